package model

import "testing"

func TestUUIDBaseBeforeCreate(t *testing.T) {
	msg := &ChatMessage{}
	if err := msg.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate failed: %v", err)
	}
	if len(msg.ID) != 36 {
		t.Fatalf("generated id %q is not a uuid", msg.ID)
	}

	// 已有主键不重新生成
	fixed := &ChatMessage{UUIDBase: UUIDBase{ID: "existing-id"}}
	if err := fixed.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate failed: %v", err)
	}
	if fixed.ID != "existing-id" {
		t.Fatalf("existing id overwritten: %q", fixed.ID)
	}
}

func TestGenerateUUIDUnique(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	if len(a) != 36 || len(b) != 36 {
		t.Fatalf("unexpected uuid lengths %d/%d", len(a), len(b))
	}
	if a == b {
		t.Fatal("two generated uuids collide")
	}
}
