package domain

import (
	"github.com/shopspring/decimal"
)

// Portfolio is the ordered list of buckets owned by the portfolio store
type Portfolio []Bucket

// Clone returns a deep copy so callers can never alias the store's slices
func (p Portfolio) Clone() Portfolio {
	if p == nil {
		return Portfolio{}
	}
	out := make(Portfolio, len(p))
	for i, b := range p {
		funds := make([]Fund, len(b.Funds))
		copy(funds, b.Funds)
		b.Funds = funds
		out[i] = b
	}
	return out
}

// TotalValue sums the current value of every fund in every bucket
func (p Portfolio) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, b := range p {
		total = total.Add(b.CurrentValue())
	}
	return total
}

// BucketAt resolves a bucket index, returning NotFoundError when out of range
func (p Portfolio) BucketAt(bucketIndex int) (*Bucket, error) {
	if bucketIndex < 0 || bucketIndex >= len(p) {
		return nil, NewNotFoundError("bucket index", bucketIndex)
	}
	return &p[bucketIndex], nil
}

// FundAt resolves a bucket index and fund index pair
func (p Portfolio) FundAt(bucketIndex, fundIndex int) (*Bucket, *Fund, error) {
	bucket, err := p.BucketAt(bucketIndex)
	if err != nil {
		return nil, nil, err
	}
	if fundIndex < 0 || fundIndex >= len(bucket.Funds) {
		return nil, nil, NewNotFoundError("fund index", fundIndex)
	}
	return bucket, &bucket.Funds[fundIndex], nil
}
