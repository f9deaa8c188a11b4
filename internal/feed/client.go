// Package feed talks to the upstream crowd-sourcing feed that supplies
// station records and raw report rows. Both endpoints page their data in
// numbered batches; fetches after the first pass are incremental via an
// effective-start-timestamp cursor.
package feed

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultBaseURL = "https://feed.fuelscout.app/api/v1"

// HTTPStatusError is returned when the feed responds with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
}

type BatchCallback[T any] func([]T) (int, error)

type Client interface {
	GetStations(BatchCallback[models.Station]) (int, error)
	GetReports(BatchCallback[models.Report]) (int, error)
}

type timeTracker struct {
	started           time.Time
	lastAuth          time.Time
	lastStationsFetch time.Time
	lastReportsFetch  time.Time
}

type feedManager struct {
	baseUrl     string
	authReq     models.AuthRequest
	tokenData   models.TokenData
	timeTracker timeTracker
	client      *http.Client
}

func NewClient(baseUrl, clientId, clientSecret string) (Client, error) {
	if baseUrl == "" {
		baseUrl = DefaultBaseURL
	}
	mgr := &feedManager{
		baseUrl: baseUrl,
		timeTracker: timeTracker{
			started: time.Now(),
		},
		client: &http.Client{},
		authReq: models.AuthRequest{
			ClientId:     clientId,
			ClientSecret: clientSecret,
		},
	}

	err := mgr.authenticate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to authenticate")
	}

	return mgr, nil
}

func (mgr *feedManager) GetStations(callback BatchCallback[models.Station]) (int, error) {
	decode := func(body io.ReadCloser, batchNo int) ([]models.Station, int, error) {
		var resp models.StationsResponse
		decoder := json.NewDecoder(body)
		if err := decoder.Decode(&resp); err != nil {
			return nil, 0, errors.Wrap(err, "failed to unmarshal response")
		}
		if !resp.Success {
			return nil, 0, errors.Newf("feed error: %s", resp.Message)
		}
		return resp.Data, resp.MetaData.TotalBatches, nil
	}

	return fetchBatched(mgr, "stations", &mgr.timeTracker.lastStationsFetch, decode, callback)
}

func (mgr *feedManager) GetReports(callback BatchCallback[models.Report]) (int, error) {
	decode := func(body io.ReadCloser, batchNo int) ([]models.Report, int, error) {
		var resp models.ReportsResponse
		decoder := json.NewDecoder(body)
		if err := decoder.Decode(&resp); err != nil {
			return nil, 0, errors.Wrap(err, "failed to unmarshal response")
		}
		if !resp.Success {
			return nil, 0, errors.Newf("feed error: %s", resp.Message)
		}
		return resp.Data, resp.MetaData.TotalBatches, nil
	}

	return fetchBatched(mgr, "reports", &mgr.timeTracker.lastReportsFetch, decode, callback)
}

func (mgr *feedManager) authenticate() error {
	url := fmt.Sprintf("%s/oauth/generate_access_token", mgr.baseUrl)
	body, err := mgr.post(url, "application/json", mgr.authReq)
	if err != nil {
		return err
	}
	defer closeBody(body)

	var resp models.AuthResponse
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&resp); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	if !resp.Success {
		return errors.Newf("authentication failed: %s", resp.Message)
	}

	mgr.tokenData = resp.Data
	mgr.timeTracker.lastAuth = time.Now()
	log.Printf("Authenticated successfully, token expires in %d seconds", resp.Data.ExpiresIn)

	return nil
}

func (mgr *feedManager) tokenRefresh() error {
	tokenReq := models.TokenRefreshRequest{
		ClientId:     mgr.authReq.ClientId,
		RefreshToken: mgr.tokenData.RefreshToken,
	}
	url := fmt.Sprintf("%s/oauth/regenerate_access_token", mgr.baseUrl)
	body, err := mgr.post(url, "application/json", tokenReq)
	if err != nil {
		return err
	}
	defer closeBody(body)

	var resp models.AuthResponse
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&resp); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	if !resp.Success {
		return errors.Newf("authentication failed: %s", resp.Message)
	}

	mgr.tokenData.AccessToken = resp.Data.AccessToken
	mgr.tokenData.ExpiresIn = resp.Data.ExpiresIn
	mgr.timeTracker.lastAuth = time.Now()
	log.Printf("Token refresh completed successfully, token expires in %d seconds", mgr.tokenData.ExpiresIn)

	return nil
}

func (mgr *feedManager) checkTokenExpiry() error {
	expiryTime := mgr.timeTracker.lastAuth.Add(time.Duration(mgr.tokenData.ExpiresIn) * time.Second)
	expiresSoon := time.Until(expiryTime) < 5*time.Minute

	if expiresSoon {
		log.Printf("Access token has either expired or is expiring soon, refreshing...")
		if err := mgr.tokenRefresh(); err != nil {
			return errors.Wrap(err, "failed to refresh token")
		}
	}
	return nil
}

func fetchBatched[T any](
	mgr *feedManager,
	path string,
	lastFetch *time.Time,
	decode func(io.ReadCloser, int) ([]T, int, error),
	callback BatchCallback[T],
) (int, error) {
	if err := mgr.checkTokenExpiry(); err != nil {
		return 0, errors.Wrap(err, "failed to refresh token")
	}

	batchNo := 1
	count := 0

	startTime := time.Now()
	effectiveStartTimestamp := ""
	if !lastFetch.IsZero() {
		log.Printf("Time since last fetch for %s: %s", path, time.Since(*lastFetch))
		effectiveStartTimestamp = lastFetch.Format("2006-01-02 15:04:05")
	}

	for {
		url := fmt.Sprintf("%s/%s?batch-number=%d", mgr.baseUrl, path, batchNo)
		if effectiveStartTimestamp != "" {
			url += "&effective-start-timestamp=" + neturl.QueryEscape(effectiveStartTimestamp)
		}
		body, err := mgr.get(url)
		if err != nil {
			var stErr *HTTPStatusError
			if errors.As(err, &stErr) && stErr.StatusCode == 400 {
				log.Printf("No more batches available for %s, stopping at batch %d", path, batchNo-1)
				break
			}
			return 0, err
		}

		data, totalBatches, err := decode(body, batchNo)
		if err != nil {
			_ = body.Close()
			return 0, err
		}
		_ = body.Close()

		numRecords, err := callback(data)
		if err != nil {
			return 0, errors.Wrap(err, "callback error")
		}
		count += numRecords
		batchNo++

		if numRecords == 0 || (totalBatches > 0 && batchNo > totalBatches) {
			break
		}
	}

	*lastFetch = startTime
	return count, nil
}

func (mgr *feedManager) get(url string) (io.ReadCloser, error) {
	log.Printf("GET %s", url)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+mgr.tokenData.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := mgr.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch from %s", url)
	}

	if resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (mgr *feedManager) post(url, contentType string, data any) (io.ReadCloser, error) {
	log.Printf("POST %s", url)
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request body")
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := mgr.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform request")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Printf("failed to close body: %v", err)
	}
}
