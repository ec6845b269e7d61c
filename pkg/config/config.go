// Package config는 환경 변수 기반 설정 조회를 제공하는 패키지입니다.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 인터페이스는 설정 값에 액세스하기 위한 메서드를 정의합니다.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetStringSlice(key string) []string
	IsSet(key string) bool
}

// viperConfig는 viper를 사용하여 Config 인터페이스를 구현합니다.
type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *viperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *viperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *viperConfig) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetStringSlice는 콤마로 구분된 환경 변수 값을 슬라이스로 분리합니다.
func (c *viperConfig) GetStringSlice(key string) []string {
	raw := c.v.GetString(key)
	if raw == "" {
		return nil
	}
	out := make([]string, 0)
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// IsSet은 키에 해당하는 환경 변수가 존재하는지 확인합니다.
func (c *viperConfig) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// FromEnv는 prefix가 붙은 환경 변수만 읽는 Config를 생성합니다.
// 키의 "."은 "_"로 치환됩니다. 예) prefix=BRILLO, key=stripe.secret_key -> BRILLO_STRIPE_SECRET_KEY
func FromEnv(prefix string) Config {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(prefix))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &viperConfig{v: v}
}
