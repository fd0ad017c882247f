package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// priceListItem is the part of a Pricing API price list document we read
type priceListItem struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// OnDemandPrice returns the hourly Linux on-demand price in USD for an instance type in the
// client's region. ok is false when AWS publishes no price for it.
func (c *Client) OnDemandPrice(ctx context.Context, instanceType string) (float64, bool, error) {
	input := &pricing.GetProductsInput{
		ServiceCode: aws.String("AmazonEC2"),
		Filters: []types.Filter{
			termMatch("instanceType", instanceType),
			termMatch("regionCode", c.region),
			termMatch("operatingSystem", "Linux"),
			termMatch("tenancy", "Shared"),
			termMatch("preInstalledSw", "NA"),
			termMatch("capacitystatus", "Used"),
		},
		MaxResults: aws.Int32(10),
	}

	output, err := c.pricingClient.GetProducts(ctx, input)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get products for %s: %w", instanceType, err)
	}

	for _, doc := range output.PriceList {
		price, ok, err := parseOnDemandPrice(doc)
		if err != nil {
			return 0, false, fmt.Errorf("failed to parse price list for %s: %w", instanceType, err)
		}
		if ok {
			return price, true, nil
		}
	}
	return 0, false, nil
}

func termMatch(field, value string) types.Filter {
	return types.Filter{
		Type:  types.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// parseOnDemandPrice extracts the first positive hourly USD price from a price list document
func parseOnDemandPrice(doc string) (float64, bool, error) {
	var item priceListItem
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return 0, false, err
	}

	for _, term := range item.Terms.OnDemand {
		for _, dimension := range term.PriceDimensions {
			if dimension.Unit != "" && dimension.Unit != "Hrs" {
				continue
			}
			usd, ok := dimension.PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return 0, false, err
			}
			if price > 0 {
				return price, true, nil
			}
		}
	}
	return 0, false, nil
}
