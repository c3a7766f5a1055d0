package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/pkg/errors"
)

// SSMParameterGetter is the subset of the SSM client used to read secrets.
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func newSSMClient(ctx context.Context) (SSMParameterGetter, error) {
	awsConf, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	return ssm.NewFromConfig(awsConf), nil
}

// loadSecretsFromSSM overwrites the secret settings with the values stored under Secrets.SSMPrefix.
func (c *Config) loadSecretsFromSSM(ctx context.Context, client SSMParameterGetter) error {
	secrets := []struct {
		name string
		dest *string
	}{
		{"google-client-id", &c.Google.ClientID},
		{"google-client-secret", &c.Google.ClientSecret},
		{"session-secret", &c.Server.SessionSecret},
		{"mongo-uri", &c.Database.URI},
		{"chat-api-key", &c.Chat.APIKey},
		{"news-api-key", &c.News.APIKey},
		{"rollbar-token", &c.RollbarToken},
	}
	for _, s := range secrets {
		val, err := getParameter(ctx, client, c.Secrets.SSMPrefix+"/"+s.name)
		if err != nil {
			return err
		}
		*s.dest = val
	}
	return nil
}

func getParameter(ctx context.Context, client SSMParameterGetter, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", errors.Wrapf(err, "getting parameter %s", name)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s is empty", name)
	}
	return *out.Parameter.Value, nil
}
