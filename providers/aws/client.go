package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vram-calculator/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
)

// The Pricing API is only served from a few regions; us-east-1 answers for all of them.
const pricingRegion = "us-east-1"

// EC2API is the subset of the EC2 client the provider uses
type EC2API interface {
	DescribeInstanceTypes(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error)
}

// PricingAPI is the subset of the Pricing client the provider uses
type PricingAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Client is the AWS provider client
type Client struct {
	ec2Client     EC2API
	pricingClient PricingAPI
	region        string
	now           func() time.Time
}

// NewClient creates a new AWS client for region using the default credential chain
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewClientWithAPIs(
		region,
		ec2.NewFromConfig(cfg),
		pricing.NewFromConfig(cfg, func(o *pricing.Options) { o.Region = pricingRegion }),
	), nil
}

// NewClientWithAPIs creates a client from already constructed service clients
func NewClientWithAPIs(region string, ec2Client EC2API, pricingClient PricingAPI) *Client {
	return &Client{
		ec2Client:     ec2Client,
		pricingClient: pricingClient,
		region:        region,
		now:           time.Now,
	}
}

// Region returns the region instances are listed in
func (c *Client) Region() string {
	return c.region
}

// ListGPUInstances lists every instance type in the region that carries GPUs
func (c *Client) ListGPUInstances(ctx context.Context) ([]models.GPUInstance, error) {
	input := &ec2.DescribeInstanceTypesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("instance-type"),
				Values: []string{"p*", "g*"},
			},
		},
		MaxResults: aws.Int32(100),
	}

	var instances []models.GPUInstance
	paginator := ec2.NewDescribeInstanceTypesPaginator(c.ec2Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instance types: %w", err)
		}
		for _, info := range page.InstanceTypes {
			if instance, ok := c.toGPUInstance(info); ok {
				instances = append(instances, instance)
			}
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].InstanceType < instances[j].InstanceType
	})
	return instances, nil
}

func (c *Client) toGPUInstance(info types.InstanceTypeInfo) (models.GPUInstance, bool) {
	if info.GpuInfo == nil || len(info.GpuInfo.Gpus) == 0 {
		return models.GPUInstance{}, false
	}

	var count int
	var name string
	for _, gpu := range info.GpuInfo.Gpus {
		count += int(aws.ToInt32(gpu.Count))
		if name == "" {
			name = aws.ToString(gpu.Name)
		}
	}
	if count == 0 {
		return models.GPUInstance{}, false
	}

	totalMiB := aws.ToInt32(info.GpuInfo.TotalGpuMemoryInMiB)
	return models.GPUInstance{
		Provider:        models.ProviderAWS,
		InstanceType:    string(info.InstanceType),
		Region:          c.region,
		GPUType:         name,
		GPUsPerInstance: count,
		TotalGPUMemory:  int(totalMiB / 1024),
		LastUpdated:     c.now().UTC(),
	}, true
}
