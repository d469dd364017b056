package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Credentials Secrets Manager 中保存的数据库凭据
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// secretGetter 便于测试替换
type secretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// FetchCredentials 读取 AWSCURRENT 版本的数据库凭据
func FetchCredentials(ctx context.Context, secretID, region string) (*Credentials, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	return fetchCredentials(ctx, secretsmanager.NewFromConfig(awsCfg), secretID)
}

func fetchCredentials(ctx context.Context, client secretGetter, secretID string) (*Credentials, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("读取数据库凭据失败: %w", err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("数据库凭据 %s 不是字符串类型", secretID)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("解析数据库凭据失败: %w", err)
	}
	if creds.Username == "" {
		return nil, fmt.Errorf("数据库凭据 %s 缺少 username", secretID)
	}
	return &creds, nil
}
