package imagehost

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/images"
	"github.com/recordroom/vinyl-lister/internal/models"
)

const (
	tradingEndpoint        = "https://api.ebay.com/ws/api.dll"
	tradingSandboxEndpoint = "https://api.sandbox.ebay.com/ws/api.dll"
	callUploadPictures     = "UploadSiteHostedPictures"
	ebayNamespace          = "urn:ebay:apis:eBLBaseComponents"
)

// EBay hosts pictures through the Trading API UploadSiteHostedPictures call.
type EBay struct {
	Token       string
	SiteID      string
	CompatLevel string
	Endpoint    string
	HTTPClient  *http.Client
}

func NewEBay(cfg config.EBayConfig) *EBay {
	endpoint := tradingEndpoint
	if cfg.Sandbox {
		endpoint = tradingSandboxEndpoint
	}
	siteID := cfg.SiteID
	if siteID == "" {
		siteID = "0"
	}
	compat := cfg.CompatLevel
	if compat == "" {
		compat = "1423"
	}
	return &EBay{
		Token:       strings.TrimSpace(cfg.Token),
		SiteID:      siteID,
		CompatLevel: compat,
		Endpoint:    endpoint,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// HostFromURL follows Plan: probe the URL, then try each planned strategy
// in order.
func (e *EBay) HostFromURL(ctx context.Context, url string, opts Options) (string, error) {
	direct := DirectLink(url)
	probe, err := fetchProbe(ctx, e.HTTPClient, direct)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
	}
	plan, err := Plan(probe)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
	}

	var lastErr error
	for _, strategy := range plan {
		var hosted string
		switch strategy {
		case StrategyExternalURL:
			hosted, err = e.uploadExternal(ctx, direct, pictureName(opts))
		case StrategyAttachment:
			hosted, err = e.HostFromBytes(ctx, probe.Body, opts)
		}
		if err == nil {
			return hosted, nil
		}
		slog.Warn("Picture upload strategy failed", "strategy", strategy, "url", direct, "error", err)
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, lastErr)
}

// HostFromBytes normalizes data to JPEG and uploads it as an attachment.
func (e *EBay) HostFromBytes(ctx context.Context, data []byte, opts Options) (string, error) {
	if len(data) > images.MaxUploadBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", models.ErrHostingFailed, images.MaxUploadBytes)
	}
	jpeg, err := images.NormalizeJPEG(data, 0)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable image: %v", models.ErrHostingFailed, err)
	}
	hosted, err := e.uploadAttachment(ctx, jpeg, pictureName(opts))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
	}
	return hosted, nil
}

type uploadRequest struct {
	XMLName              xml.Name `xml:"urn:ebay:apis:eBLBaseComponents UploadSiteHostedPicturesRequest"`
	Token                string   `xml:"RequesterCredentials>eBayAuthToken"`
	ExternalPictureURL   string   `xml:"ExternalPictureURL,omitempty"`
	PictureName          string   `xml:"PictureName,omitempty"`
	PictureSystemVersion int      `xml:"PictureSystemVersion"`
}

type uploadResponse struct {
	Ack    string `xml:"Ack"`
	Errors []struct {
		ShortMessage string `xml:"ShortMessage"`
		LongMessage  string `xml:"LongMessage"`
	} `xml:"Errors"`
	Details struct {
		FullURL string `xml:"FullURL"`
		BaseURL string `xml:"BaseURL"`
		Members []struct {
			MemberURL string `xml:"MemberURL"`
		} `xml:"PictureSetMember"`
	} `xml:"SiteHostedPictureDetails"`
}

func (e *EBay) envelope(externalURL, name string) ([]byte, error) {
	if e.Token == "" {
		return nil, fmt.Errorf("eBay user token is not set (EBAY_USER_TOKEN)")
	}
	body, err := xml.Marshal(uploadRequest{
		Token:                e.Token,
		ExternalPictureURL:   externalURL,
		PictureName:          name,
		PictureSystemVersion: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func (e *EBay) uploadExternal(ctx context.Context, url, name string) (string, error) {
	payload, err := e.envelope(url, name)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	e.setHeaders(req)
	req.Header.Set("Content-Type", "text/xml")
	return e.do(req)
}

func (e *EBay) uploadAttachment(ctx context.Context, jpeg []byte, name string) (string, error) {
	payload, err := e.envelope("", name)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// The XML part must precede the image.
	xmlHeader := make(textproto.MIMEHeader)
	xmlHeader.Set("Content-Disposition", `form-data; name="XML Payload"`)
	xmlHeader.Set("Content-Type", "text/xml; charset=utf-8")
	xmlPart, err := mw.CreatePart(xmlHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create xml part: %w", err)
	}
	if _, err := xmlPart.Write(payload); err != nil {
		return "", fmt.Errorf("failed to write xml part: %w", err)
	}

	fileHeader := make(textproto.MIMEHeader)
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s.jpg"`, safeFileName(name)))
	fileHeader.Set("Content-Type", "image/jpeg")
	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := filePart.Write(jpeg); err != nil {
		return "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	e.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *EBay) setHeaders(req *http.Request) {
	req.Header.Set("X-EBAY-API-CALL-NAME", callUploadPictures)
	req.Header.Set("X-EBAY-API-SITEID", e.SiteID)
	req.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", e.CompatLevel)
	req.Header.Set("X-EBAY-API-RESPONSE-ENCODING", "XML")
}

func (e *EBay) do(req *http.Request) (string, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call eBay: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read eBay response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("eBay returned status %d: %s", resp.StatusCode, preview(raw))
	}
	return extractHostedURL(raw)
}

// extractHostedURL prefers FullURL, then a picture-set member, then BaseURL,
// then the first element whose whole text is an http(s) URL. A Failure ack
// without a structured URL is an error.
func extractHostedURL(raw []byte) (string, error) {
	var resp uploadResponse
	if err := xml.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse eBay response: %w", err)
	}

	if isHTTP(resp.Details.FullURL) {
		return strings.TrimSpace(resp.Details.FullURL), nil
	}
	for _, m := range resp.Details.Members {
		if isHTTP(m.MemberURL) {
			return strings.TrimSpace(m.MemberURL), nil
		}
	}
	if isHTTP(resp.Details.BaseURL) {
		return strings.TrimSpace(resp.Details.BaseURL), nil
	}
	if !strings.EqualFold(strings.TrimSpace(resp.Ack), "Failure") {
		if u := firstURLElement(raw); u != "" {
			return u, nil
		}
	}

	var msgs []string
	for _, e := range resp.Errors {
		msgs = append(msgs, firstNonEmpty(e.LongMessage, e.ShortMessage))
	}
	return "", fmt.Errorf("no picture URL in eBay response (Ack=%s): %s", firstNonEmpty(resp.Ack, "N/A"), strings.Join(msgs, "; "))
}

// firstURLElement returns the first element text outside <Errors> that is
// entirely a single URL.
func firstURLElement(raw []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	inErrors := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Errors" {
				inErrors++
			}
		case xml.EndElement:
			if t.Name.Local == "Errors" && inErrors > 0 {
				inErrors--
			}
		case xml.CharData:
			if inErrors > 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if isHTTP(text) && !strings.ContainsAny(text, " \t\r\n") {
				return text
			}
		}
	}
}

func isHTTP(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var unsafeFileChars = regexp.MustCompile(`[^\w.-]`)

func safeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func preview(b []byte) string {
	if len(b) > 500 {
		return string(b[:500]) + "..."
	}
	return string(b)
}
