package validator

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps validator/v10 as the gin binding validator
// CustomValidator 将 validator/v10 包装为 gin 的绑定验证器
type CustomValidator struct {
	once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

var _ binding.StructValidator = &CustomValidator{}

func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.Validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
		registerDomainTags(v.Validate)
	})
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

var deckNameRe = regexp.MustCompile(`^[^\x00"]+$`)

// RegisterCustom registers domain validation tags on the gin binding engine.
// RegisterCustom 在 gin 绑定引擎上注册领域自定义验证标签
func RegisterCustom() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerDomainTags(v)
	}
}

func registerDomainTags(v *validator.Validate) {
	_ = v.RegisterValidation("deckname", func(fl validator.FieldLevel) bool {
		return deckNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ease", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= 4
	})
}
