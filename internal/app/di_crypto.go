package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
	cryptoService "github.com/allisson/securelink/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KMSKeeper returns the KMS keeper used to unwrap link keys. It returns a nil
// keeper without error when no KMS key URI is configured, in which case link
// keys are read as plain base64 from the environment.
func (c *Container) KMSKeeper() (cryptoDomain.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		c.kmsKeeper, err = c.initKMSKeeper()
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// LinkKeyChain returns the link key chain loaded from environment variables.
func (c *Container) LinkKeyChain() (*cryptoDomain.LinkKeyChain, error) {
	var err error
	c.linkKeyChainInit.Do(func() {
		c.linkKeyChain, err = c.initLinkKeyChain()
		if err != nil {
			c.initErrors["linkKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["linkKeyChain"]; exists {
		return nil, storedErr
	}
	return c.linkKeyChain, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// initKMSKeeper opens a keeper for the configured KMS key URI, if any.
func (c *Container) initKMSKeeper() (cryptoDomain.KMSKeeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, nil
	}

	keeper, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}

	return keeper, nil
}

// initLinkKeyChain loads the link key chain, unwrapping key material through
// the KMS keeper when one is configured.
func (c *Container) initLinkKeyChain() (*cryptoDomain.LinkKeyChain, error) {
	keeper, err := c.KMSKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms keeper for link key chain: %w", err)
	}

	var unwrap cryptoDomain.KeyUnwrapper
	if keeper != nil {
		unwrap = keeper
	}

	chain, err := cryptoDomain.LoadLinkKeyChainFromEnv(context.Background(), unwrap)
	if err != nil {
		return nil, fmt.Errorf("failed to load link key chain: %w", err)
	}

	return chain, nil
}
