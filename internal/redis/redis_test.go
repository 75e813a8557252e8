package redis

import (
	"context"
	"testing"
)

func TestConnectWithoutURL(t *testing.T) {
	client, err := Connect(context.Background(), "")
	if err != nil || client != nil {
		t.Fatalf("expected nil client and no error, got %v, %v", client, err)
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "http://not-redis"); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}
