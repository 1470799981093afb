package devops

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterStore reads decrypted values from SSM Parameter Store and caches them
// for the life of the process.
type ParameterStore struct {
	client SSMClient
	mu     sync.Mutex
	cache  map[string]string
}

func NewParameterStore(client SSMClient) *ParameterStore {
	return &ParameterStore{client: client, cache: map[string]string{}}
}

func ConnectParameterStore(ctx context.Context) (*ParameterStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewParameterStore(ssm.NewFromConfig(cfg)), nil
}

func (p *ParameterStore) Get(ctx context.Context, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.cache[name]; ok {
		return v, nil
	}

	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}

	p.cache[name] = *out.Parameter.Value
	return *out.Parameter.Value, nil
}

// LoadParameter reads one parameter using the default AWS credentials chain.
func LoadParameter(ctx context.Context, name string) (string, error) {
	store, err := ConnectParameterStore(ctx)
	if err != nil {
		return "", err
	}
	return store.Get(ctx, name)
}
