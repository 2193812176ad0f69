package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct-horse-battery", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify(hash, "correct-horse-battery") {
		t.Fatal("expected password to verify")
	}
	if Verify(hash, "wrong-password") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := Hash("", 4); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHashClampsCost(t *testing.T) {
	hash, err := Hash("secret-password", 99)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify(hash, "secret-password") {
		t.Fatal("expected password to verify")
	}
}
