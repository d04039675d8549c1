// Package demo provides a handful of Processor implementations with no
// purpose beyond exercising internal/planner end to end: a root value
// source, a couple of transformations wired by output/input name, a
// wildcard consumer narrowed by CustomDependencies, and a processor that
// both requires and provides attributes.
package demo

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mapfish/printplan/internal/processor"
)

// Greeting has no inputs; it seeds the graph with a single string output.
type Greeting struct {
	processor.Defaults
	Text string
}

type greetingOutput struct {
	Greeting string `plan:"greeting"`
}

func (p *Greeting) CreateInputParameter() any  { return nil }
func (p *Greeting) OutputType() reflect.Type   { return reflect.TypeOf(greetingOutput{}) }

// Run populates the processor's own output; a real executor would call this
// after the graph confirms the node is ready to run.
func (p *Greeting) Run() greetingOutput {
	text := p.Text
	if text == "" {
		text = "hello"
	}
	return greetingOutput{Greeting: text}
}

// Shout consumes "greeting" and produces "shout", both by field name.
type Shout struct {
	processor.Defaults
}

type shoutInput struct {
	Greeting string `plan:"greeting"`
}

type shoutOutput struct {
	Shout string `plan:"shout"`
}

func (p *Shout) CreateInputParameter() any { return &shoutInput{} }
func (p *Shout) OutputType() reflect.Type  { return reflect.TypeOf(shoutOutput{}) }

func (p *Shout) Run(in shoutInput) shoutOutput {
	return shoutOutput{Shout: strings.ToUpper(in.Greeting) + "!"}
}

// WordCount consumes "shout" and produces "wordCount".
type WordCount struct {
	processor.Defaults
}

type wordCountInput struct {
	Shout string `plan:"shout"`
}

type wordCountOutput struct {
	WordCount int64 `plan:"wordCount"`
}

func (p *WordCount) CreateInputParameter() any { return &wordCountInput{} }
func (p *WordCount) OutputType() reflect.Type  { return reflect.TypeOf(wordCountOutput{}) }

func (p *WordCount) Run(in wordCountInput) wordCountOutput {
	return wordCountOutput{WordCount: int64(len(strings.Fields(in.Shout)))}
}

// Summary declares the reserved VALUES wildcard input but narrows itself,
// via CustomDependencies, to only "shout" and "wordCount"; it never sees
// whatever else might be flowing through the values bag.
type Summary struct {
	processor.Defaults
}

type summaryInput struct {
	Values map[string]any `plan:"values"`
}

type summaryOutput struct {
	Summary string `plan:"summary"`
}

func (p *Summary) CreateInputParameter() any { return &summaryInput{} }
func (p *Summary) OutputType() reflect.Type  { return reflect.TypeOf(summaryOutput{}) }
func (p *Summary) Dependencies() []string    { return []string{"shout", "wordCount"} }

func (p *Summary) Run(in summaryInput) summaryOutput {
	return summaryOutput{Summary: fmt.Sprintf("%v", in.Values)}
}

// OutputFormatReader requires the well-known "outputFormat" attribute and,
// in turn, provides its own derived "outputExtension" attribute, exercising
// C5's two-pass pull/push.
type OutputFormatReader struct {
	processor.Defaults

	extension string
}

type outputFormatInput struct {
	OutputFormat string `plan:"outputFormat"`
}

type outputFormatOutput struct {
	Extension string `plan:"outputExtension"`
}

func (p *OutputFormatReader) CreateInputParameter() any { return &outputFormatInput{} }
func (p *OutputFormatReader) OutputType() reflect.Type  { return reflect.TypeOf(outputFormatOutput{}) }

func (p *OutputFormatReader) SetAttribute(internalName string, v any) error {
	if internalName != "OutputFormat" {
		return nil
	}
	format, ok := v.(string)
	if !ok {
		return fmt.Errorf("demo: outputFormat attribute must be a string, got %T", v)
	}
	p.extension = "." + strings.ToLower(format)
	return nil
}

func (p *OutputFormatReader) Attributes() map[string]any {
	return map[string]any{"Extension": p.extension}
}
