package mcp

import (
	"github.com/ludo-technologies/hunkscope/app"
	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/internal/config"
	"github.com/ludo-technologies/hunkscope/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	loader     domain.DatasetLoader
	fileReader *service.FileReaderImpl
	config     *config.Config
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.Config) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Dependencies{
		loader:     service.NewDatasetLoader(),
		fileReader: service.NewFileReader(),
		config:     cfg,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

func (d *Dependencies) divergenceService() *service.DivergenceServiceImpl {
	// no progress bar: stdout carries JSON-RPC
	return service.NewDivergenceService(d.loader, d.fileReader)
}

func (d *Dependencies) depthSurvey() *service.PackageDepthScanner {
	return service.NewPackageDepthScanner(d.loader, d.fileReader)
}

// BuildDivergenceUseCase assembles a fresh DivergenceUseCase.
func (d *Dependencies) BuildDivergenceUseCase() (*app.DivergenceUseCase, error) {
	return app.NewDivergenceUseCaseBuilder().
		WithService(d.divergenceService()).
		WithFormatter(service.NewAnalyzeFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(nil)).
		Build()
}

// BuildProximityUseCase assembles a fresh ProximityUseCase.
func (d *Dependencies) BuildProximityUseCase() (*app.ProximityUseCase, error) {
	return app.NewProximityUseCaseBuilder().
		WithLocalizer(d.divergenceService()).
		WithService(service.NewProximityService()).
		WithDepthSurvey(d.depthSurvey()).
		WithFormatter(service.NewAnalyzeFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(nil)).
		Build()
}

// BuildAnalyzeUseCase assembles a fresh AnalyzeUseCase.
func (d *Dependencies) BuildAnalyzeUseCase() (*app.AnalyzeUseCase, error) {
	return app.NewAnalyzeUseCaseBuilder().
		WithDivergenceService(d.divergenceService()).
		WithDepthSurvey(d.depthSurvey()).
		Build()
}
