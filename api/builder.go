package api

import "github.com/sarchlab/hackvm/codegen"

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	writerBuilder *codegen.Builder
	bootstrap     BootstrapMode
}

// WithWriterBuilder sets how the driver creates the code generator of each
// program.
func (b DriverBuilder) WithWriterBuilder(wb codegen.Builder) DriverBuilder {
	b.writerBuilder = &wb
	return b
}

// WithBootstrap sets when the bootstrap is emitted.
func (b DriverBuilder) WithBootstrap(mode BootstrapMode) DriverBuilder {
	b.bootstrap = mode
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build() Driver {
	wb := codegen.NewBuilder()
	if b.writerBuilder != nil {
		wb = *b.writerBuilder
	}

	return &driverImpl{
		writerBuilder: wb,
		bootstrap:     b.bootstrap,
	}
}
