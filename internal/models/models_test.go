package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestBaseModelBeforeCreateKeepsAssignedID(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"folder", func() *BaseModel {
			f := &Folder{BaseModel: BaseModel{ID: "F1"}}
			return &f.BaseModel
		}},
		{"asset", func() *BaseModel {
			a := &Asset{BaseModel: BaseModel{ID: "MUM-0125-ABCDEF-K"}}
			return &a.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := tc.model()
			want := base.ID
			if err := base.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if base.ID != want {
				t.Fatalf("expected ID %q to be kept, got %q", want, base.ID)
			}
		})
	}
}

func TestAuditLogBeforeCreateDefaults(t *testing.T) {
	var entry AuditLog
	if err := entry.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected audit log ID to be generated")
	}
	if entry.Severity != SeverityInfo {
		t.Fatalf("expected default severity %q, got %q", SeverityInfo, entry.Severity)
	}
}
