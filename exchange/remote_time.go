// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"bytes"
	"time"
)

// RemoteTime is a timestamp issued by the brokerage servers.
type RemoteTime struct {
	time.Time
}

func (v RemoteTime) MarshalBinary() ([]byte, error) {
	if v.IsZero() {
		return nil, nil
	}
	return []byte(v.Time.Format(time.RFC3339Nano)), nil
}

func (v *RemoteTime) UnmarshalBinary(bs []byte) error {
	if len(bs) == 0 {
		v.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(bs))
	if err != nil {
		return err
	}
	v.Time = t
	return nil
}

// UnmarshalJSON accepts null and empty strings as the zero time.
func (v *RemoteTime) UnmarshalJSON(bs []byte) error {
	if s := bytes.Trim(bs, `"`); len(s) == 0 || string(s) == "null" {
		v.Time = time.Time{}
		return nil
	}
	return v.Time.UnmarshalJSON(bs)
}
