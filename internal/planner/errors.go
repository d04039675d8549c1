package planner

import "fmt"

// MissingInputError reports that a processor's non-default input has no
// producer: neither an attribute nor an earlier processor's output.
type MissingInputError struct {
	Processor string
	Input     string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("processor %q has no value for input %q", e.Processor, e.Input)
}

// TypeConflictError reports that an input's declared type cannot accept the
// type of whatever would supply it. ProducerProcessor is empty when the
// conflicting source is an attribute rather than an earlier processor.
type TypeConflictError struct {
	Processor         string
	Input             string
	InputType         string
	ProducerProcessor string // empty => conflict is with an attribute
	ProducerType      string
}

func (e *TypeConflictError) Error() string {
	if e.ProducerProcessor == "" {
		return fmt.Sprintf(
			"type conflict: the attribute %q is of type %s, while processor %q expects an input of that name with type %s",
			e.Input, e.ProducerType, e.Processor, e.InputType,
		)
	}
	return fmt.Sprintf(
		"type conflict: processor %q provides an output named %q of type %s, while processor %q expects an input of that name with type %s",
		e.ProducerProcessor, e.Input, e.ProducerType, e.Processor, e.InputType,
	)
}

// DuplicateOutputError reports that two processors publish the same,
// non-renameable output name.
type DuplicateOutputError struct {
	Output              string
	FirstProcessor      string
	ConflictingProcessor string
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf(
		"multiple processors provide the same output %q: %q and %q; rename one of the outputs and its corresponding input to remove the ambiguity",
		e.Output, e.FirstProcessor, e.ConflictingProcessor,
	)
}

// OutputClashesWithAttributeError reports that a processor's non-renameable
// output name collides with a pre-existing externally supplied attribute.
type OutputClashesWithAttributeError struct {
	Output    string
	Processor string
}

func (e *OutputClashesWithAttributeError) Error() string {
	return fmt.Sprintf(
		"processor %q provides the output %q which is already declared as an attribute; rename one of them to remove the ambiguity",
		e.Processor, e.Output,
	)
}

// UnreachableProcessorsError reports that one or more supplied processors
// were never linked into the graph from any root.
type UnreachableProcessorsError struct {
	Missing []string
}

func (e *UnreachableProcessorsError) Error() string {
	return fmt.Sprintf("the processor graph does not contain all the processors; missing: %v", e.Missing)
}

// AttributeTypeMismatchError is returned by FillAttributes when pushing a
// live attribute into a processor fails because of a type mismatch.
type AttributeTypeMismatchError struct {
	Processor    string
	ExternalName string
	InternalName string
	Cause        error
}

func (e *AttributeTypeMismatchError) Error() string {
	return fmt.Sprintf(
		"processor %q requires attribute %q (%s) but has the wrong type: %v",
		e.Processor, e.ExternalName, e.InternalName, e.Cause,
	)
}

func (e *AttributeTypeMismatchError) Unwrap() error { return e.Cause }
