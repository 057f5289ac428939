package rayvision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserProfile holds the account fields the client knows about. Anything else
// the server returns is kept in Extra under its wire name.
type UserProfile struct {
	UserID       int64
	UserName     string
	Platform     int
	Phone        string
	Email        string
	Company      string
	Name         string
	Job          string
	SoftType     int
	SoftStatus   int
	BusinessType int
	Status       int
	InfoStatus   int
	AccountType  int
	TaskOverTime int
	ConfigBID    string
	InputBID     string
	OutputBID    string

	Extra map[string]any
}

var profileFields = map[string]func(p *UserProfile, v any){
	"userId":       func(p *UserProfile, v any) { p.UserID = int64(numberValue(v)) },
	"userName":     func(p *UserProfile, v any) { p.UserName = stringValue(v) },
	"platform":     func(p *UserProfile, v any) { p.Platform = int(numberValue(v)) },
	"phone":        func(p *UserProfile, v any) { p.Phone = stringValue(v) },
	"email":        func(p *UserProfile, v any) { p.Email = stringValue(v) },
	"company":      func(p *UserProfile, v any) { p.Company = stringValue(v) },
	"name":         func(p *UserProfile, v any) { p.Name = stringValue(v) },
	"job":          func(p *UserProfile, v any) { p.Job = stringValue(v) },
	"softType":     func(p *UserProfile, v any) { p.SoftType = int(numberValue(v)) },
	"softStatus":   func(p *UserProfile, v any) { p.SoftStatus = int(numberValue(v)) },
	"businessType": func(p *UserProfile, v any) { p.BusinessType = int(numberValue(v)) },
	"status":       func(p *UserProfile, v any) { p.Status = int(numberValue(v)) },
	"infoStatus":   func(p *UserProfile, v any) { p.InfoStatus = int(numberValue(v)) },
	"accountType":  func(p *UserProfile, v any) { p.AccountType = int(numberValue(v)) },
	"taskOverTime": func(p *UserProfile, v any) { p.TaskOverTime = int(numberValue(v)) },
	"config_bid":   func(p *UserProfile, v any) { p.ConfigBID = stringValue(v) },
	"input_bid":    func(p *UserProfile, v any) { p.InputBID = stringValue(v) },
	"output_bid":   func(p *UserProfile, v any) { p.OutputBID = stringValue(v) },
}

// UnmarshalJSON accepts numbers or numeric strings for numeric fields. The
// server is not consistent about which it sends.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	*p = profileFromMap(fields)
	return nil
}

// Field looks up a server field that has no typed counterpart.
func (p UserProfile) Field(name string) (any, bool) {
	v, ok := p.Extra[name]
	return v, ok
}

func profileFromMap(fields map[string]any) UserProfile {
	var p UserProfile
	for key, v := range fields {
		if set, ok := profileFields[key]; ok {
			set(&p, v)
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = v
	}
	return p
}

// QueryUserProfile fetches the account profile.
func QueryUserProfile(ctx context.Context, p Poster) (UserProfile, error) {
	return PostAs[UserProfile](ctx, p, PathQueryUserProfile, nil, SkipValidation())
}

// QueryUserSetting fetches the account render settings.
func QueryUserSetting(ctx context.Context, p Poster) (map[string]any, error) {
	return queryObject(ctx, p, PathQueryUserSetting)
}

// TransferBID fetches the transfer bucket ids.
func TransferBID(ctx context.Context, p Poster) (map[string]any, error) {
	return queryObject(ctx, p, PathGetTransferBid)
}

// LoadProfile merges profile, settings and transfer ids into one profile.
// Later sources win on key collisions.
func LoadProfile(ctx context.Context, p Poster) (UserProfile, error) {
	merged, err := queryObject(ctx, p, PathQueryUserProfile)
	if err != nil {
		return UserProfile{}, err
	}
	for _, path := range []string{PathQueryUserSetting, PathGetTransferBid} {
		fields, err := queryObject(ctx, p, path)
		if err != nil {
			return UserProfile{}, err
		}
		for k, v := range fields {
			merged[k] = v
		}
	}
	return profileFromMap(merged), nil
}

// UpdateUserSetting sets the task timeout in seconds.
func UpdateUserSetting(ctx context.Context, p Poster, taskOverTime int) error {
	_, err := p.Post(ctx, PathUpdateUserSetting, map[string]any{"taskOverTimeSec": taskOverTime})
	return err
}

func queryObject(ctx context.Context, p Poster, endpointPath string) (map[string]any, error) {
	data, err := p.Post(ctx, endpointPath, nil, SkipValidation())
	if err != nil {
		return nil, err
	}
	fields, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", EndpointName(endpointPath), err)
	}
	return fields, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func numberValue(v any) float64 {
	switch x := v.(type) {
	case json.Number:
		f, _ := x.Float64()
		return f
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	default:
		return 0
	}
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
