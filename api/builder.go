package api

import (
	"github.com/sarchlab/vmtrans/codegen"
	"github.com/sarchlab/vmtrans/template"
)

// DefaultEntry is the function the bootstrap jump targets by default.
const DefaultEntry = "Sys.init"

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	entry         *string
	defaultModule string
	noComments    bool
	table         *template.Table
}

// WithEntry sets the entry function. An empty name disables the bootstrap
// jump.
func (b DriverBuilder) WithEntry(name string) DriverBuilder {
	b.entry = &name
	return b
}

// WithDefaultModule sets the module that names static variables before
// the first function, when the program has no entry function.
func (b DriverBuilder) WithDefaultModule(module string) DriverBuilder {
	b.defaultModule = module
	return b
}

// WithComments controls the comment line before each translated
// instruction.
func (b DriverBuilder) WithComments(on bool) DriverBuilder {
	b.noComments = !on
	return b
}

// WithTable sets the template table.
func (b DriverBuilder) WithTable(t *template.Table) DriverBuilder {
	b.table = t
	return b
}

// Build create a driver.
func (b DriverBuilder) Build() Driver {
	entry := DefaultEntry
	if b.entry != nil {
		entry = *b.entry
	}

	return &driverImpl{
		entry:         entry,
		defaultModule: b.defaultModule,
		generator: codegen.GeneratorBuilder{}.
			WithTable(b.table).
			WithComments(!b.noComments).
			Build(),
	}
}
