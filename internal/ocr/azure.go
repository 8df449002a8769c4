package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Azure implements Recognizer using the Azure Computer Vision Read API.
// Read is asynchronous: the analyze call returns an operation URL that
// is polled until the recognition finishes.
type Azure struct {
	endpoint     string
	key          string
	client       *http.Client
	pollInterval time.Duration
}

// NewAzure creates an Azure Read Recognizer. The endpoint is the
// resource base URL, e.g. https://myresource.cognitiveservices.azure.com.
func NewAzure(endpoint, key string) (*Azure, error) {
	return NewAzureWithClient(endpoint, key, &http.Client{Timeout: 30 * time.Second}, 1*time.Second)
}

// NewAzureWithClient creates an Azure Recognizer with a custom HTTP
// client and poll interval for testing.
func NewAzureWithClient(endpoint, key string, client *http.Client, pollInterval time.Duration) (*Azure, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if key == "" {
		return nil, fmt.Errorf("azure api key is required")
	}

	return &Azure{
		endpoint:     strings.TrimRight(endpoint, "/"),
		key:          key,
		client:       client,
		pollInterval: pollInterval,
	}, nil
}

// azureReadResult mirrors the Read API operation result payload.
type azureReadResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// RecognizeText submits the ticket image to the Read API and polls the
// operation until the recognized text is available.
func (a *Azure) RecognizeText(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pngData, _, err := normalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	operationURL, err := a.submit(ctx, pngData)
	if err != nil {
		return "", err
	}
	return a.poll(ctx, operationURL)
}

func (a *Azure) submit(ctx context.Context, pngData []byte) (string, error) {
	url := a.endpoint + "/vision/v3.2/read/analyze"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(pngData))
	if err != nil {
		return "", fmt.Errorf("creating analyze request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &ServiceError{Backend: "azure", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", &ServiceError{Backend: "azure", Err: fmt.Errorf("analyze returned status %d: %s", resp.StatusCode, string(body))}
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", &ServiceError{Backend: "azure", Err: fmt.Errorf("analyze response missing Operation-Location")}
	}
	return operationURL, nil
}

func (a *Azure) poll(ctx context.Context, operationURL string) (string, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, "GET", operationURL, nil)
		if err != nil {
			return "", fmt.Errorf("creating result request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

		resp, err := a.client.Do(req)
		if err != nil {
			return "", &ServiceError{Backend: "azure", Err: err}
		}

		var result azureReadResult
		decodeErr := json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", &ServiceError{Backend: "azure", Err: fmt.Errorf("result returned status %d", resp.StatusCode)}
		}
		if decodeErr != nil {
			return "", &ServiceError{Backend: "azure", Err: fmt.Errorf("decoding result: %w", decodeErr)}
		}

		switch result.Status {
		case "succeeded":
			var lines []string
			for _, page := range result.AnalyzeResult.ReadResults {
				for _, line := range page.Lines {
					lines = append(lines, line.Text)
				}
			}
			return strings.Join(lines, "\n"), nil
		case "failed":
			return "", &ServiceError{Backend: "azure", Err: fmt.Errorf("read operation failed")}
		}

		select {
		case <-ctx.Done():
			return "", &ServiceError{Backend: "azure", Err: ctx.Err()}
		case <-time.After(a.pollInterval):
		}
	}
}

// Close closes the recognizer. The HTTP client needs no teardown.
func (a *Azure) Close() error {
	return nil
}
