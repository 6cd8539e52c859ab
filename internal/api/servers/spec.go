package servers

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the validated OpenAPI document embedded in the binary.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPIYAML)
		if err != nil {
			swaggerErr = fmt.Errorf("error loading OpenAPI document: %w", err)
			return
		}
		if err = doc.Validate(loader.Context); err != nil {
			swaggerErr = fmt.Errorf("invalid OpenAPI document: %w", err)
			return
		}
		swaggerDoc = doc
	})
	return swaggerDoc, swaggerErr
}

// swaggerSpec serves the document to swag readers such as echo-swagger.
type swaggerSpec struct {
	doc string
}

func (s swaggerSpec) ReadDoc() string {
	return s.doc
}

// RegisterSwagger makes the OpenAPI document available to swag under its
// default instance name and returns the JSON form.
func RegisterSwagger() ([]byte, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}

	if swag.GetSwagger(swag.Name) == nil {
		swag.Register(swag.Name, swaggerSpec{doc: string(raw)})
	}
	return raw, nil
}
