package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/mediacabinet/pkg/rule"
)

// uploadForm 用于测试 ValidateStruct.
type uploadForm struct {
	Folder uint   `rule:"required"`
	PPOI   string `rule:"ppoi"`
}

// TestEngine 测试 Engine 返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Fatal("Engine() returned nil")
	}
}

// TestValidPPOI 测试焦点格式判断.
func TestValidPPOI(t *testing.T) {
	valid := []string{"0.5x0.5", "0x0", "1x1", "0.25x0.75"}
	for _, s := range valid {
		if !rule.ValidPPOI(s) {
			t.Errorf("ValidPPOI(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "0.5", "0.5x", "x0.5", "1.5x0.5", "0.5x-0.1", "axb", "0.5x0.5x0.5"}
	for _, s := range invalid {
		if rule.ValidPPOI(s) {
			t.Errorf("ValidPPOI(%q) = true, want false", s)
		}
	}
}

// TestValidateStruct 测试结构体校验，包括内置规则与 ppoi 规则.
func TestValidateStruct(t *testing.T) {
	if err := rule.ValidateStruct(uploadForm{Folder: 1, PPOI: "0.5x0.5"}); err != nil {
		t.Errorf("expected no error for valid form, got %v", err)
	}

	if err := rule.ValidateStruct(uploadForm{Folder: 0, PPOI: "0.5x0.5"}); err == nil {
		t.Error("expected error for missing folder, got nil")
	}

	if err := rule.ValidateStruct(uploadForm{Folder: 1, PPOI: "2x2"}); err == nil {
		t.Error("expected error for out-of-range ppoi, got nil")
	}
}

// TestValidateVar 测试单值校验.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("0.3x0.7", "ppoi"); err != nil {
		t.Errorf("expected no error for valid ppoi, got %v", err)
	}

	if err := rule.ValidateVar("nope", "ppoi"); err == nil {
		t.Error("expected error for invalid ppoi, got nil")
	}

	if err := rule.ValidateVar(4096, "max=2048"); err == nil {
		t.Error("expected error for value above max, got nil")
	}
}

// TestRegisterValidation 测试注册自定义规则.
func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("object_key", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)

		return ok && len(s) > 0 && s[0] != '/'
	})
	if err != nil {
		t.Fatalf("RegisterValidation: %v", err)
	}

	if err := rule.ValidateVar("media/2026/abc.png", "object_key"); err != nil {
		t.Errorf("expected no error for valid key, got %v", err)
	}

	if err := rule.ValidateVar("/media/abc.png", "object_key"); err == nil {
		t.Error("expected error for leading slash, got nil")
	}
}

// TestRegisterAlias 测试规则别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("caption_text", "max=200")

	if err := rule.ValidateVar("short caption", "caption_text"); err != nil {
		t.Errorf("expected no error for short caption, got %v", err)
	}
}
