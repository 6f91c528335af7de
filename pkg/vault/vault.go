package vault

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
)

type SourceConfig interface {
	Write(ctx context.Context, pathRef string, config map[string]any) error
	Read(ctx context.Context, pathRef string) (map[string]any, error)
	Delete(ctx context.Context, pathRef string) error
}

type sourceConfig struct {
	client *vault.Client
}

func NewSourceConfig(vaultAddress, caPath, token string) (SourceConfig, error) {
	conf := vault.DefaultConfig()
	conf.Address = vaultAddress

	if caPath != "" {
		if err := conf.ConfigureTLS(&vault.TLSConfig{
			CAPath: caPath,
		}); err != nil {
			return nil, err
		}
	}

	c, err := vault.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("new source config vault: %w", err)
	}
	c.SetToken(token)

	return sourceConfig{client: c}, nil
}

func (v sourceConfig) Write(ctx context.Context, pathRef string, config map[string]any) error {
	_, err := v.client.Logical().WriteWithContext(ctx, pathRef, config)
	if err != nil {
		return err
	}

	return nil
}

func (v sourceConfig) Read(ctx context.Context, pathRef string) (map[string]any, error) {
	config, err := v.client.Logical().ReadWithContext(ctx, pathRef)
	if err != nil {
		return nil, err
	}

	if config == nil {
		return nil, fmt.Errorf("invalid pathRef: %s", pathRef)
	}

	return config.Data, nil
}

func (v sourceConfig) Delete(ctx context.Context, pathRef string) error {
	_, err := v.client.Logical().DeleteWithContext(ctx, pathRef)
	return err
}
