package openapi

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

var timeType = reflect.TypeOf(time.Time{})

// schemaRegistry turns Go values into schemas. Named structs become shared
// components referenced by name; everything else is inlined.
type schemaRegistry struct {
	components openapi3.Schemas
	names      map[reflect.Type]string
}

func newSchemaRegistry(components openapi3.Schemas) *schemaRegistry {
	return &schemaRegistry{
		components: components,
		names:      make(map[reflect.Type]string),
	}
}

func (r *schemaRegistry) ref(example any) *openapi3.SchemaRef {
	if example == nil {
		return openapi3.NewObjectSchema().NewRef()
	}
	return r.fromType(reflect.TypeOf(example))
}

func (r *schemaRegistry) fromType(t reflect.Type) *openapi3.SchemaRef {
	if t.Kind() == reflect.Pointer {
		inner := r.fromType(t.Elem())
		if inner.Ref != "" {
			return &openapi3.SchemaRef{Value: &openapi3.Schema{AllOf: openapi3.SchemaRefs{inner}, Nullable: true}}
		}
		inner.Value.Nullable = true
		return inner
	}

	if t == timeType {
		return openapi3.NewDateTimeSchema().NewRef()
	}

	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()
	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return openapi3.NewIntegerSchema().NewRef()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().WithMin(0).NewRef()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()
	case reflect.Slice, reflect.Array:
		return openapi3.NewArraySchema().WithItems(r.fromType(t.Elem()).Value).NewRef()
	case reflect.Map:
		return openapi3.NewObjectSchema().WithAdditionalProperties(r.fromType(t.Elem()).Value).NewRef()
	case reflect.Struct:
		return r.structRef(t)
	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}

func (r *schemaRegistry) structRef(t reflect.Type) *openapi3.SchemaRef {
	if t.Name() == "" {
		schema := openapi3.NewObjectSchema()
		r.fillStruct(t, schema)
		return schema.NewRef()
	}

	if name, ok := r.names[t]; ok {
		return openapi3.NewSchemaRef(componentRef(name), r.components[name].Value)
	}

	name := r.uniqueName(t.Name())
	schema := openapi3.NewObjectSchema()
	r.names[t] = name
	r.components[name] = schema.NewRef()
	r.fillStruct(t, schema)

	return openapi3.NewSchemaRef(componentRef(name), schema)
}

func componentRef(name string) string {
	return "#/components/schemas/" + name
}

func (r *schemaRegistry) uniqueName(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := r.components[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
}

func (r *schemaRegistry) fillStruct(t reflect.Type, schema *openapi3.Schema) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		if field.Anonymous && field.Tag.Get("json") == "" && field.Type.Kind() == reflect.Struct {
			r.fillStruct(field.Type, schema)
			continue
		}

		prop := r.fromType(field.Type)
		if doc := field.Tag.Get("doc"); doc != "" && prop.Ref == "" {
			prop.Value.Description = doc
		}
		schema.WithPropertyRef(name, prop)

		if !omitEmpty && field.Type.Kind() != reflect.Pointer {
			schema.Required = append(schema.Required, name)
		}
	}
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	name = field.Name
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}
