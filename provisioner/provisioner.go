package provisioner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"code.cloudfoundry.org/lager/v3"

	"github.com/routepool/routepool/models"
)

// Provisioner is the external system that actually creates and destroys
// backend instances. The controller only requests a target size; new
// instances join the registry asynchronously through provisioner events.
type Provisioner interface {
	ListInstances(poolId string) ([]models.BackendEndpoint, error)
	Scale(poolId string, targetCount int) error
}

type instancesResponse struct {
	Instances []models.BackendEndpoint `json:"instances"`
}

type scaleRequest struct {
	TargetCount int `json:"target_count"`
}

// HTTPProvisioner talks JSON over HTTP to the provisioner API.
type HTTPProvisioner struct {
	logger lager.Logger
	client *http.Client
	url    string
}

func NewHTTPProvisioner(logger lager.Logger, client *http.Client, url string) *HTTPProvisioner {
	return &HTTPProvisioner{
		logger: logger.Session("provisioner-client"),
		client: client,
		url:    url,
	}
}

func (p *HTTPProvisioner) ListInstances(poolId string) ([]models.BackendEndpoint, error) {
	target := fmt.Sprintf("%s/v1/pools/%s/instances", p.url, poolId)

	resp, err := p.client.Get(target)
	if err != nil {
		return nil, &models.ProvisionerError{Op: "list_instances", PoolId: poolId, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.ProvisionerError{Op: "list_instances", PoolId: poolId,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body instancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &models.ProvisionerError{Op: "list_instances", PoolId: poolId, Err: err}
	}
	return body.Instances, nil
}

func (p *HTTPProvisioner) Scale(poolId string, targetCount int) error {
	target := fmt.Sprintf("%s/v1/pools/%s/scale", p.url, poolId)

	payload, err := json.Marshal(scaleRequest{TargetCount: targetCount})
	if err != nil {
		return &models.ProvisionerError{Op: "scale", PoolId: poolId, Err: err}
	}

	req, err := http.NewRequest(http.MethodPut, target, bytes.NewReader(payload))
	if err != nil {
		return &models.ProvisionerError{Op: "scale", PoolId: poolId, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &models.ProvisionerError{Op: "scale", PoolId: poolId, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return &models.ProvisionerError{Op: "scale", PoolId: poolId,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	p.logger.Info("scale-accepted", lager.Data{"poolId": poolId, "targetCount": targetCount})
	return nil
}
