package validation

import "testing"

func TestRequireString(t *testing.T) {
	obj := map[string]any{"id": "x", "blank": "  ", "num": 3}
	if err := RequireString(obj, "id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range []string{"blank", "num", "absent"} {
		if err := RequireString(obj, f); err == nil {
			t.Fatalf("field %q should fail", f)
		}
	}
}

func TestValidateChat(t *testing.T) {
	if err := ValidateChat(map[string]any{"id": "c1", "userId": "u1"}); err != nil {
		t.Fatalf("valid chat rejected: %v", err)
	}
	if err := ValidateChat(map[string]any{"id": "c1"}); err == nil {
		t.Fatalf("missing userId should fail")
	}
	if err := ValidateChat(map[string]any{"id": "c1", "userId": "u1", "pickupTime": "2024-06-01T09:00:00Z"}); err != nil {
		t.Fatalf("valid pickupTime rejected: %v", err)
	}
	if err := ValidateChat(map[string]any{"id": "c1", "userId": "u1", "pickupTime": "soon"}); err == nil {
		t.Fatalf("bad pickupTime should fail")
	}
	if err := ValidateChat(map[string]any{"id": "c1", "userId": "u1", "pickupTime": 12345}); err == nil {
		t.Fatalf("non-string pickupTime should fail")
	}
	// explicit null is treated as absent
	if err := ValidateChat(map[string]any{"id": "c1", "userId": "u1", "pickupTime": nil}); err != nil {
		t.Fatalf("null pickupTime rejected: %v", err)
	}
}

func TestIDsRejectKeySeparator(t *testing.T) {
	// ':' is the storage key separator; an id like "a:msg:x" would land a
	// chat's meta record inside another chat's message range
	if err := ValidateChat(map[string]any{"id": "a:msg:x", "userId": "u1"}); err == nil {
		t.Fatalf("chat id with ':' should fail")
	}
	if err := ValidateChat(map[string]any{"id": "c1", "userId": "u:1"}); err == nil {
		t.Fatalf("userId with ':' should fail")
	}
	if err := ValidateProfile(map[string]any{"id": "p:1"}); err == nil {
		t.Fatalf("profile id with ':' should fail")
	}
	if err := SafeID("plain-id"); err != nil {
		t.Fatalf("plain id rejected: %v", err)
	}
	if err := SafeID("a:b"); err == nil {
		t.Fatalf("SafeID should reject ':'")
	}
}
