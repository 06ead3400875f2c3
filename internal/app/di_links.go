package app

import (
	"fmt"

	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
	linksHTTP "github.com/allisson/securelink/internal/links/http"
	linksRepository "github.com/allisson/securelink/internal/links/repository"
	linksService "github.com/allisson/securelink/internal/links/service"
	linksUseCase "github.com/allisson/securelink/internal/links/usecase"
)

// CodeGenerator returns the short code generator.
func (c *Container) CodeGenerator() (linksService.CodeGenerator, error) {
	var err error
	c.codeGeneratorInit.Do(func() {
		c.codeGenerator, err = linksService.NewCodeGenerator(
			c.config.LinkCodeLength,
			c.config.LinkMaxCodeAttempts,
		)
		if err != nil {
			c.initErrors["codeGenerator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["codeGenerator"]; exists {
		return nil, storedErr
	}
	return c.codeGenerator, nil
}

// LinkRepository returns the Redis-backed link record repository.
func (c *Container) LinkRepository() (linksUseCase.LinkRepository, error) {
	var err error
	c.linkRepositoryInit.Do(func() {
		c.linkRepository, err = c.initLinkRepository()
		if err != nil {
			c.initErrors["linkRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["linkRepository"]; exists {
		return nil, storedErr
	}
	return c.linkRepository, nil
}

// LinkUseCase returns the link use case instance.
func (c *Container) LinkUseCase() (linksUseCase.LinkUseCase, error) {
	var err error
	c.linkUseCaseInit.Do(func() {
		c.linkUseCase, err = c.initLinkUseCase()
		if err != nil {
			c.initErrors["linkUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["linkUseCase"]; exists {
		return nil, storedErr
	}
	return c.linkUseCase, nil
}

// LinkHandler returns the HTTP handler for link endpoints.
func (c *Container) LinkHandler() (*linksHTTP.LinkHandler, error) {
	var err error
	c.linkHandlerInit.Do(func() {
		c.linkHandler, err = c.initLinkHandler()
		if err != nil {
			c.initErrors["linkHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["linkHandler"]; exists {
		return nil, storedErr
	}
	return c.linkHandler, nil
}

// initLinkRepository creates the link repository backed by Redis.
func (c *Container) initLinkRepository() (linksUseCase.LinkRepository, error) {
	client, err := c.RedisClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis client for link repository: %w", err)
	}
	return linksRepository.NewRedisLinkRepository(client), nil
}

// initLinkUseCase creates the link use case with all its dependencies,
// wrapping it with the metrics decorator when metrics are enabled.
func (c *Container) initLinkUseCase() (linksUseCase.LinkUseCase, error) {
	linkRepo, err := c.LinkRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get link repository for link use case: %w", err)
	}

	codeGen, err := c.CodeGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get code generator for link use case: %w", err)
	}

	keyChain, err := c.LinkKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get link key chain for link use case: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.LinkKeyAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse link key algorithm: %w", err)
	}

	useCase := linksUseCase.NewLinkUseCase(
		linkRepo,
		codeGen,
		keyChain,
		c.AEADManager(),
		algorithm,
		c.config.LinkExpiration,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for link use case: %w", err)
		}
		useCase = linksUseCase.NewLinkUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initLinkHandler creates the link HTTP handler.
func (c *Container) initLinkHandler() (*linksHTTP.LinkHandler, error) {
	linkUseCase, err := c.LinkUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get link use case for link handler: %w", err)
	}
	return linksHTTP.NewLinkHandler(linkUseCase, c.Logger()), nil
}
