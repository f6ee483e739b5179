package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

// Key layout of the billing namespace. Counter values are 8-byte little-endian
// unsigned integers; record values are JSON.
const (
	planCountKey         = "plan_count"
	subscriptionCountKey = "subscription_count"
	deferredCallCountKey = "deferred_call_count"
	deferredCallHeadKey  = "deferred_call_head"

	planKeyPrefix         = "plan_"
	subscriptionKeyPrefix = "subscription_"
	userSubsKeyPrefix     = "user_subs_"
	deferredCallKeyPrefix = "deferred_call_"
	balanceKeyPrefix      = "balance_"
)

func PlanCountKey() []byte { return []byte(planCountKey) }

func SubscriptionCountKey() []byte { return []byte(subscriptionCountKey) }

func DeferredCallCountKey() []byte { return []byte(deferredCallCountKey) }

func DeferredCallHeadKey() []byte { return []byte(deferredCallHeadKey) }

func PlanKey(id uint64) []byte {
	return []byte(planKeyPrefix + strconv.FormatUint(id, 10))
}

func SubscriptionKey(id uint64) []byte {
	return []byte(subscriptionKeyPrefix + strconv.FormatUint(id, 10))
}

func UserSubscriptionsKey(address string) []byte {
	return []byte(userSubsKeyPrefix + address)
}

func DeferredCallKey(id uint64) []byte {
	return []byte(deferredCallKeyPrefix + strconv.FormatUint(id, 10))
}

func BalanceKey(address string) []byte {
	return []byte(balanceKeyPrefix + address)
}

func EncodeCount(n uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, n)
	return buf
}

func DecodeCount(value []byte) (uint64, error) {
	if len(value) != 8 {
		return 0, fmt.Errorf("storage: counter value has %d bytes, want 8", len(value))
	}
	return binary.LittleEndian.Uint64(value), nil
}

// ReadCount returns the counter stored under key, or zero if the counter has
// never been written.
func ReadCount(ctx context.Context, r Reader, key []byte) (uint64, error) {
	value, err := r.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return DecodeCount(value)
}
