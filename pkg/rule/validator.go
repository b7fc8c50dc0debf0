// Package rule 封装 go-playground/validator，统一使用 rule 标签，
// 并注册媒体库专用的校验规则.
package rule

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 复用 gin 的 validator 引擎，保证 binding 与手动校验共用一套规则；
// 引擎不可用时退回独立实例.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName("rule")

	// 图片焦点格式 "0.5x0.5"，两个分量均在 [0,1]
	_ = inst.RegisterValidation("ppoi", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return ValidPPOI(s)
	})
}

func lazyInit() {
	once.Do(initValidator)
}

// ValidPPOI 判断字符串是否为合法的图片焦点，形如 "0.5x0.5".
func ValidPPOI(s string) bool {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return false
	}

	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > 1 {
			return false
		}
	}

	return true
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 注册自定义校验规则.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// RegisterAlias 注册规则别名.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}

// ValidateStruct 对结构体执行 rule 标签校验.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 对单个值按规则串校验，例如 ValidateVar(ppoi, "ppoi").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}
