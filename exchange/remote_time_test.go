// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"
	"time"
)

func TestRemoteTimeGob(t *testing.T) {
	type GobType struct {
		Timepoint RemoteTime
	}

	var zero GobType
	var zbuf bytes.Buffer
	if err := gob.NewEncoder(&zbuf).Encode(&zero); err != nil {
		t.Fatal(err)
	}
	zrecovered := new(GobType)
	if err := gob.NewDecoder(&zbuf).Decode(zrecovered); err != nil {
		t.Fatal(err)
	}
	if !zrecovered.Timepoint.IsZero() {
		t.Fatalf("IsZero: want true, got false")
	}

	v := GobType{Timepoint: RemoteTime{Time: time.Now()}}
	var vbuf bytes.Buffer
	if err := gob.NewEncoder(&vbuf).Encode(&v); err != nil {
		t.Fatal(err)
	}
	vrecovered := new(GobType)
	if err := gob.NewDecoder(&vbuf).Decode(vrecovered); err != nil {
		t.Fatal(err)
	}
	if !vrecovered.Timepoint.Equal(v.Timepoint.Time) {
		t.Fatalf("Equal: want true, got false")
	}
}

func TestRemoteTimeJSON(t *testing.T) {
	type Payload struct {
		CreatedAt RemoteTime `json:"created_at"`
		UpdatedAt RemoteTime `json:"updated_at"`
		FilledAt  RemoteTime `json:"filled_at"`
	}

	input := `{"created_at": "2021-03-04T15:16:17.123456Z", "updated_at": null, "filled_at": ""}`
	var p Payload
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2021, 3, 4, 15, 16, 17, 123456000, time.UTC)
	if !p.CreatedAt.Equal(want) {
		t.Fatalf("wanted %s, got %s", want, p.CreatedAt)
	}
	if !p.UpdatedAt.IsZero() || !p.FilledAt.IsZero() {
		t.Fatalf("wanted zero times for null and empty values")
	}
}
