package planner

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Well-known attribute names the builder seeds into its type table before
// looking at a single processor: the fixed catalogue of ambient values
// every processor may depend on (the values bag, the
// task's scratch directory, the shared HTTP request factory handle, the
// active template, the PDF config, the sub-report directory, the output
// format, and the request-headers attribute). The surrounding
// report-printing system is responsible for actually producing these; this
// core only needs to know their names and types exist.
const (
	ValuesAttribute                  = "values"
	TaskDirectoryAttribute           = "taskDirectory"
	ClientHTTPRequestFactoryAttribute = "clientHttpRequestFactory"
	TemplateAttribute                = "template"
	PDFConfigAttribute               = "pdfConfig"
	SubReportDirAttribute            = "subReportDir"
	OutputFormatAttribute            = "outputFormat"
	RequestHeadersAttribute          = "requestHeaders"
)

// Marker types give each ambient attribute a distinct, comparable cty
// capsule type without this package needing to know the concrete Go types
// the surrounding printing engine uses for Values, Template, and so on;
// those remain named external collaborators, never imported here.
type (
	valuesMarker                  struct{}
	taskDirectoryMarker           struct{}
	clientHTTPRequestFactoryMarker struct{}
	templateMarker                struct{}
	pdfConfigMarker                struct{}
	subReportDirMarker             struct{}
	outputFormatMarker             struct{}
	requestHeadersMarker           struct{}
)

var (
	valuesType                  = cty.Capsule("values", typeOf[valuesMarker]())
	taskDirectoryType           = cty.Capsule("task-directory", typeOf[taskDirectoryMarker]())
	clientHTTPRequestFactoryType = cty.Capsule("client-http-request-factory", typeOf[clientHTTPRequestFactoryMarker]())
	templateType                = cty.Capsule("template", typeOf[templateMarker]())
	pdfConfigType                = cty.Capsule("pdf-config", typeOf[pdfConfigMarker]())
	subReportDirType             = cty.String
	outputFormatType             = cty.String
	requestHeadersType           = cty.Capsule("request-headers", typeOf[requestHeadersMarker]())
)

// ambientAttributes returns the fixed catalogue of well-known names and
// their types, seeded into the builder's type table alongside whatever
// attributes the caller supplies.
func ambientAttributes() map[string]cty.Type {
	return map[string]cty.Type{
		ValuesAttribute:                  valuesType,
		TaskDirectoryAttribute:           taskDirectoryType,
		ClientHTTPRequestFactoryAttribute: clientHTTPRequestFactoryType,
		TemplateAttribute:                templateType,
		PDFConfigAttribute:               pdfConfigType,
		SubReportDirAttribute:            subReportDirType,
		OutputFormatAttribute:            outputFormatType,
		RequestHeadersAttribute:          requestHeadersType,
	}
}
