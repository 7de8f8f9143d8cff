package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestConnectionStringRoundTrip(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}

	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); err != ErrNotFound {
		t.Errorf("after delete, error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); err != ErrNotFound {
		t.Errorf("second delete error = %v, want %v", err, ErrNotFound)
	}
}

func TestSetEmptyRejected(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
	if err := SetSessionToken(""); err == nil {
		t.Error("SetSessionToken(\"\") should return an error")
	}
}

func TestSessionToken(t *testing.T) {
	gokeyring.MockInit()

	if _, err := GetSessionToken(); err != ErrNotFound {
		t.Fatalf("GetSessionToken() on empty keyring error = %v", err)
	}
	if err := SetSessionToken("abc.def.ghi"); err != nil {
		t.Fatal(err)
	}
	got, err := GetSessionToken()
	if err != nil || got != "abc.def.ghi" {
		t.Errorf("GetSessionToken() = %q, %v", got, err)
	}
	if err := DeleteSessionToken(); err != nil {
		t.Errorf("DeleteSessionToken() error = %v", err)
	}
}

func TestSigningSecretStable(t *testing.T) {
	gokeyring.MockInit()

	first, err := SigningSecret()
	if err != nil {
		t.Fatalf("SigningSecret() error = %v", err)
	}
	if len(first) != 2*secretBytes {
		t.Errorf("secret length = %d, want %d", len(first), 2*secretBytes)
	}

	second, err := SigningSecret()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("SigningSecret() generated a new secret on second call")
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
