package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vram-calculator/core/models"
)

type fakeEC2 struct {
	pages [][]ec2types.InstanceTypeInfo
	calls int
	err   error
}

func (f *fakeEC2) DescribeInstanceTypes(_ context.Context, params *ec2.DescribeInstanceTypesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++

	out := &ec2.DescribeInstanceTypesOutput{InstanceTypes: page}
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

type fakePricing struct {
	input     *pricing.GetProductsInput
	priceList []string
	err       error
}

func (f *fakePricing) GetProducts(_ context.Context, params *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &pricing.GetProductsOutput{PriceList: f.priceList}, nil
}

func gpuType(name string, gpu string, count int32, totalMiB int32) ec2types.InstanceTypeInfo {
	return ec2types.InstanceTypeInfo{
		InstanceType: ec2types.InstanceType(name),
		GpuInfo: &ec2types.GpuInfo{
			Gpus: []ec2types.GpuDeviceInfo{
				{Name: aws.String(gpu), Count: aws.Int32(count)},
			},
			TotalGpuMemoryInMiB: aws.Int32(totalMiB),
		},
	}
}

func TestListGPUInstances(t *testing.T) {
	fake := &fakeEC2{pages: [][]ec2types.InstanceTypeInfo{
		{
			gpuType("p4d.24xlarge", "A100", 8, 327680),
			{InstanceType: ec2types.InstanceType("g5g.metal")},
		},
		{
			gpuType("g5.xlarge", "A10G", 1, 24576),
		},
	}}
	client := NewClientWithAPIs("us-west-2", fake, &fakePricing{})
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	instances, err := client.ListGPUInstances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, []models.GPUInstance{
		{
			Provider:        models.ProviderAWS,
			InstanceType:    "g5.xlarge",
			Region:          "us-west-2",
			GPUType:         "A10G",
			GPUsPerInstance: 1,
			TotalGPUMemory:  24,
			LastUpdated:     now,
		},
		{
			Provider:        models.ProviderAWS,
			InstanceType:    "p4d.24xlarge",
			Region:          "us-west-2",
			GPUType:         "A100",
			GPUsPerInstance: 8,
			TotalGPUMemory:  320,
			LastUpdated:     now,
		},
	}, instances)
	assert.Equal(t, 40, instances[1].MemoryPerGPU())
}

func TestListGPUInstancesError(t *testing.T) {
	client := NewClientWithAPIs("us-east-1", &fakeEC2{err: errors.New("denied")}, &fakePricing{})
	_, err := client.ListGPUInstances(context.Background())
	assert.ErrorContains(t, err, "failed to describe instance types")
}

const g5PriceList = `{
  "product": {"attributes": {"instanceType": "g5.xlarge"}},
  "terms": {
    "OnDemand": {
      "ABC.JRTCKXETXF": {
        "priceDimensions": {
          "ABC.JRTCKXETXF.6YS6EN2CT7": {
            "unit": "Hrs",
            "pricePerUnit": {"USD": "1.0060000000"}
          }
        }
      }
    }
  }
}`

func TestOnDemandPrice(t *testing.T) {
	fake := &fakePricing{priceList: []string{g5PriceList}}
	client := NewClientWithAPIs("us-east-1", &fakeEC2{}, fake)

	price, ok, err := client.OnDemandPrice(context.Background(), "g5.xlarge")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.006, price)

	require.NotNil(t, fake.input)
	assert.Equal(t, "AmazonEC2", aws.ToString(fake.input.ServiceCode))
	fields := map[string]string{}
	for _, f := range fake.input.Filters {
		fields[aws.ToString(f.Field)] = aws.ToString(f.Value)
	}
	assert.Equal(t, "g5.xlarge", fields["instanceType"])
	assert.Equal(t, "us-east-1", fields["regionCode"])
	assert.Equal(t, "Linux", fields["operatingSystem"])
}

func TestOnDemandPriceMissing(t *testing.T) {
	client := NewClientWithAPIs("us-east-1", &fakeEC2{}, &fakePricing{})
	_, ok, err := client.OnDemandPrice(context.Background(), "g5.xlarge")
	require.NoError(t, err)
	assert.False(t, ok)

	client = NewClientWithAPIs("us-east-1", &fakeEC2{}, &fakePricing{priceList: []string{`{"terms": {"OnDemand": {}}}`}})
	_, ok, err = client.OnDemandPrice(context.Background(), "g5.xlarge")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOnDemandPriceErrors(t *testing.T) {
	client := NewClientWithAPIs("us-east-1", &fakeEC2{}, &fakePricing{err: errors.New("throttled")})
	_, _, err := client.OnDemandPrice(context.Background(), "g5.xlarge")
	assert.ErrorContains(t, err, "failed to get products for g5.xlarge")

	client = NewClientWithAPIs("us-east-1", &fakeEC2{}, &fakePricing{priceList: []string{"not json"}})
	_, _, err = client.OnDemandPrice(context.Background(), "g5.xlarge")
	assert.ErrorContains(t, err, "failed to parse price list")
}
