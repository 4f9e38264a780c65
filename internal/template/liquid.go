package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// LiquidService renders Liquid templates for callers that opt into the
// advanced syntax ({{ first_name | default: "Friend" }} and friends).
// Parsed templates are cached per cache key for repeated renders of the same
// campaign content.
type LiquidService struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewLiquidService creates a Liquid engine with the mail-oriented filters
// registered.
func NewLiquidService() *LiquidService {
	s := &LiquidService{engine: liquid.NewEngine()}
	s.registerFilters()
	return s
}

func (s *LiquidService) registerFilters() {
	// Fallback value: {{ first_name | default: "Friend" }}
	s.engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		if str := fmt.Sprintf("%v", value); str == "" || str == "<nil>" {
			return fallback
		}
		return value
	})

	// Capitalize first letter: {{ name | capitalize }}
	s.engine.RegisterFilter("capitalize", func(str string) string {
		if str == "" {
			return str
		}
		return strings.ToUpper(str[:1]) + strings.ToLower(str[1:])
	})

	// Extract the domain: {{ email | email_domain }}
	s.engine.RegisterFilter("email_domain", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) == 2 {
			return parts[1]
		}
		return ""
	})

	// Mask for privacy: {{ email | mask_email }}
	s.engine.RegisterFilter("mask_email", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) != 2 {
			return email
		}
		local := parts[0]
		if len(local) <= 2 {
			return local + "***@" + parts[1]
		}
		return local[:2] + "***@" + parts[1]
	})
}

// Parse compiles a template string and reports any syntax error.
func (s *LiquidService) Parse(templateStr string) error {
	_, err := s.engine.ParseString(templateStr)
	return err
}

// Render processes a Liquid template against string variables. On parse or
// render errors the original template is returned alongside the error so a
// send can still proceed with unpersonalized content.
func (s *LiquidService) Render(cacheKey, templateStr string, vars map[string]string) (string, error) {
	bindings := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		bindings[k] = v
	}

	if cacheKey != "" {
		if cached, ok := s.cache.Load(cacheKey); ok {
			out, err := cached.(*liquid.Template).RenderString(bindings)
			if err != nil {
				return templateStr, err
			}
			return out, nil
		}
	}

	tpl, err := s.engine.ParseString(templateStr)
	if err != nil {
		return templateStr, err
	}
	if cacheKey != "" {
		s.cache.Store(cacheKey, tpl)
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return templateStr, err
	}
	return out, nil
}
