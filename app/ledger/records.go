package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/vibast-solutions/ms-go-billing-ledger/app/entity"
)

func encodePlan(p *entity.Plan) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode plan %d: %w", p.ID, err)
	}
	return data, nil
}

func decodePlan(data []byte) (*entity.Plan, error) {
	p := &entity.Plan{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode plan record: %w", err)
	}
	return p, nil
}

func encodeSubscription(s *entity.Subscription) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode subscription %d: %w", s.ID, err)
	}
	return data, nil
}

func decodeSubscription(data []byte) (*entity.Subscription, error) {
	s := &entity.Subscription{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode subscription record: %w", err)
	}
	return s, nil
}

func encodeIDList(ids []uint64) ([]byte, error) {
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode id list: %w", err)
	}
	return data, nil
}

func decodeIDList(data []byte) ([]uint64, error) {
	var ids []uint64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return ids, nil
}
