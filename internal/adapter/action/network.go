package action

import (
	"context"
	"fmt"

	"browser-automation/internal/domain/entity"
)

type SetNetworkConditionsAction struct {
	d *Deps
}

func NewSetNetworkConditionsAction(d *Deps) *SetNetworkConditionsAction {
	return &SetNetworkConditionsAction{d: d}
}

func (a *SetNetworkConditionsAction) Name() entity.ActionName {
	return entity.ActionSetNetworkConditions
}
func (a *SetNetworkConditionsAction) Description() string { return "Emulates network conditions" }
func (a *SetNetworkConditionsAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"offline":             prop("boolean", "Simulate no connectivity"),
		"latency":             prop("number", "Added round trip latency in milliseconds"),
		"download_throughput": prop("number", "Download limit in bytes per second, -1 for none"),
		"upload_throughput":   prop("number", "Upload limit in bytes per second, -1 for none"),
		"connection_type":     prop("string", "cellular3g, wifi, ethernet and so on"),
	})
}

func (a *SetNetworkConditionsAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Offline        bool     `json:"offline"`
		Latency        float64  `json:"latency"`
		Download       *float64 `json:"download_throughput"`
		DownloadAlt    *float64 `json:"downloadThroughput"`
		Upload         *float64 `json:"upload_throughput"`
		UploadAlt      *float64 `json:"uploadThroughput"`
		ConnectionType string   `json:"connection_type"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.Latency < 0 {
		return nil, fmt.Errorf("latency must not be negative: %w", entity.ErrInvalidArguments)
	}
	conditions := entity.NetworkConditions{
		Offline:            input.Offline,
		Latency:            input.Latency,
		DownloadThroughput: firstOf(-1, input.Download, input.DownloadAlt),
		UploadThroughput:   firstOf(-1, input.Upload, input.UploadAlt),
		ConnectionType:     input.ConnectionType,
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	if err := page.EmulateNetwork(ctx, conditions); err != nil {
		return nil, entity.Upstream("emulate network", err)
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Network conditions set: %s", conditions.Describe()),
		Content: conditions,
	}, nil
}
