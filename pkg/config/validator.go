package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator 基于 struct tag 的配置校验器
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate 校验配置结构体
// 常用 tag: required, min/max, gte/lte, oneof, mac, hostname_port
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := v.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

// RegisterValidation 注册自定义 tag
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}

var defaultValidator = NewValidator()

// Validate 使用默认校验器校验配置
func Validate(cfg any) error {
	return defaultValidator.Validate(cfg)
}

func formatValidationErrors(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field, param := fe.Namespace(), fe.Param()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", field))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be at least %s", field, param))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be at most %s", field, param))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of [%s]", field, param))
		case "mac":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be a hardware address", field))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed validation '%s'", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
