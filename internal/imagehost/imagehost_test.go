package imagehost

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestDirectLink(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://drive.google.com/file/d/abcDEF12345/view?usp=sharing", "https://drive.google.com/uc?export=download&id=abcDEF12345"},
		{"https://drive.google.com/open?id=abcDEF12345", "https://drive.google.com/uc?export=download&id=abcDEF12345"},
		{"https://www.dropbox.com/s/x/a.jpg", "https://www.dropbox.com/s/x/a.jpg?dl=1"},
		{"https://www.dropbox.com/s/x/a.jpg?dl=0", "https://www.dropbox.com/s/x/a.jpg?dl=1"},
		{"https://1drv.ms/i/s!abc", "https://1drv.ms/i/s!abc?download=1"},
		{"https://contoso.sharepoint.com/a.jpg?web=1", "https://contoso.sharepoint.com/a.jpg?web=1&download=1"},
		{" https://example.com/a.jpg ", "https://example.com/a.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectLink(tt.input))
		})
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		probe   Probe
		want    []Strategy
		wantErr bool
	}{
		{"public image", Probe{StatusCode: 200, ContentType: "image/jpeg", Body: []byte{0xff}}, []Strategy{StrategyExternalURL, StrategyAttachment}, false},
		{"image with params", Probe{StatusCode: 200, ContentType: "image/png; charset=binary", Body: []byte{1}}, []Strategy{StrategyExternalURL, StrategyAttachment}, false},
		{"octet stream", Probe{StatusCode: 200, ContentType: "application/octet-stream", Body: []byte{0xff, 0xd8}}, []Strategy{StrategyAttachment}, false},
		{"html error page", Probe{StatusCode: 200, ContentType: "text/html", Body: []byte("<html>sign in</html>")}, nil, true},
		{"empty body", Probe{StatusCode: 200, ContentType: "image/jpeg"}, nil, true},
		{"not found", Probe{StatusCode: 404, ContentType: "image/jpeg", Body: []byte{1}}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.probe)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPictureName(t *testing.T) {
	long := strings.Repeat("あ", 70)
	assert.Equal(t, "Abbey Road", PictureName(&models.AnalysisResult{Title: "Abbey Road", Artist: "The Beatles"}, "R1"))
	assert.Equal(t, "The Beatles", PictureName(&models.AnalysisResult{Artist: "The Beatles"}, "R1"))
	assert.Equal(t, "PCS 7088", PictureName(&models.AnalysisResult{CatalogNumber: "PCS 7088"}, "R1"))
	assert.Equal(t, "R240101_0001", PictureName(nil, "R240101_0001"))
	assert.Equal(t, DefaultPictureName, PictureName(nil, ""))
	assert.Equal(t, 60, len([]rune(PictureName(&models.AnalysisResult{Title: long}, ""))))
}

func TestExtractHostedURL(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"full url wins",
			`<UploadSiteHostedPicturesResponse xmlns="urn:ebay:apis:eBLBaseComponents"><Ack>Success</Ack><SiteHostedPictureDetails><BaseURL>https://i.ebayimg.com/base</BaseURL><FullURL>https://i.ebayimg.com/full</FullURL></SiteHostedPictureDetails></UploadSiteHostedPicturesResponse>`,
			"https://i.ebayimg.com/full",
		},
		{
			"member url",
			`<UploadSiteHostedPicturesResponse><SiteHostedPictureDetails><PictureSetMember><MemberURL>not-a-url</MemberURL></PictureSetMember><PictureSetMember><MemberURL>https://i.ebayimg.com/m2</MemberURL></PictureSetMember><BaseURL>https://i.ebayimg.com/base</BaseURL></SiteHostedPictureDetails></UploadSiteHostedPicturesResponse>`,
			"https://i.ebayimg.com/m2",
		},
		{
			"base url",
			`<UploadSiteHostedPicturesResponse><SiteHostedPictureDetails><BaseURL>https://i.ebayimg.com/base</BaseURL></SiteHostedPictureDetails></UploadSiteHostedPicturesResponse>`,
			"https://i.ebayimg.com/base",
		},
		{
			"any url",
			`<UploadSiteHostedPicturesResponse><Other>https://i.ebayimg.com/other</Other></UploadSiteHostedPicturesResponse>`,
			"https://i.ebayimg.com/other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractHostedURL([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	failures := []struct {
		name    string
		body    string
		message string
	}{
		{
			"failure ack",
			`<UploadSiteHostedPicturesResponse><Ack>Failure</Ack><Errors><LongMessage>Invalid token</LongMessage></Errors></UploadSiteHostedPicturesResponse>`,
			"Invalid token",
		},
		{
			"failure ack quoting the source url",
			`<UploadSiteHostedPicturesResponse><Ack>Failure</Ack><Errors><LongMessage>Picture Services could not retrieve the image at http://127.0.0.1:8080/image/abc</LongMessage></Errors></UploadSiteHostedPicturesResponse>`,
			"could not retrieve",
		},
		{
			"url only inside errors",
			`<UploadSiteHostedPicturesResponse><Ack>Warning</Ack><Errors><LongMessage>http://127.0.0.1:8080/image/abc</LongMessage></Errors></UploadSiteHostedPicturesResponse>`,
			"Ack=Warning",
		},
		{
			"url embedded in text",
			`<UploadSiteHostedPicturesResponse><Note>see https://example.com/help for details</Note></UploadSiteHostedPicturesResponse>`,
			"Ack=N/A",
		},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractHostedURL([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

const ebayOK = `<?xml version="1.0" encoding="UTF-8"?><UploadSiteHostedPicturesResponse xmlns="urn:ebay:apis:eBLBaseComponents"><Ack>Success</Ack><SiteHostedPictureDetails><FullURL>https://i.ebayimg.com/00/s/abc/$_1.JPG</FullURL></SiteHostedPictureDetails></UploadSiteHostedPicturesResponse>`

func newTestEBay(t *testing.T, handler http.HandlerFunc) *EBay {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	e := NewEBay(config.EBayConfig{Token: "tok"})
	e.Endpoint = srv.URL
	e.HTTPClient = srv.Client()
	return e
}

func TestEBay_HostFromBytes_SendsXMLThenImage(t *testing.T) {
	var parts []string
	var xmlPayload string
	e := newTestEBay(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UploadSiteHostedPictures", r.Header.Get("X-EBAY-API-CALL-NAME"))
		assert.Equal(t, "0", r.Header.Get("X-EBAY-API-SITEID"))
		assert.Equal(t, "1423", r.Header.Get("X-EBAY-API-COMPATIBILITY-LEVEL"))

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		assert.NoError(t, err)
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			assert.NoError(t, err)
			parts = append(parts, p.FormName()+":"+p.Header.Get("Content-Type"))
			if p.FormName() == "XML Payload" {
				b, _ := io.ReadAll(p)
				xmlPayload = string(b)
			}
		}
		w.Write([]byte(ebayOK))
	})

	got, err := e.HostFromBytes(context.Background(), pngBytes(t), Options{PictureName: `Tom & Jerry "Live"`})
	require.NoError(t, err)
	assert.Equal(t, "https://i.ebayimg.com/00/s/abc/$_1.JPG", got)
	assert.Equal(t, []string{"XML Payload:text/xml; charset=utf-8", "file:image/jpeg"}, parts)
	assert.Contains(t, xmlPayload, "<eBayAuthToken>tok</eBayAuthToken>")
	assert.Contains(t, xmlPayload, "Tom &amp; Jerry")
	assert.NotContains(t, xmlPayload, "ExternalPictureURL")
}

func TestEBay_HostFromURL_PublicImageUsesExternalURL(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t))
	}))
	defer img.Close()

	var calls []string
	e := newTestEBay(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<ExternalPictureURL>"+img.URL+"/a.png</ExternalPictureURL>")
		w.Write([]byte(ebayOK))
	})

	got, err := e.HostFromURL(context.Background(), img.URL+"/a.png", Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://i.ebayimg.com/00/s/abc/$_1.JPG", got)
	assert.Equal(t, []string{"text/xml"}, calls)
}

func TestEBay_HostFromURL_FallsBackToAttachment(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t))
	}))
	defer img.Close()

	var calls []string
	e := newTestEBay(t, func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		calls = append(calls, strings.SplitN(ct, ";", 2)[0])
		if ct == "text/xml" {
			w.Write([]byte(`<UploadSiteHostedPicturesResponse><Ack>Failure</Ack><Errors><ShortMessage>Cannot fetch</ShortMessage><LongMessage>Picture Services could not retrieve the image at ` + img.URL + `/a.png</LongMessage></Errors></UploadSiteHostedPicturesResponse>`))
			return
		}
		w.Write([]byte(ebayOK))
	})

	got, err := e.HostFromURL(context.Background(), img.URL+"/a.png", Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://i.ebayimg.com/00/s/abc/$_1.JPG", got)
	assert.Equal(t, []string{"text/xml", "multipart/form-data"}, calls)
}

func TestEBay_HostFromURL_HTMLIsRejected(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!doctype html><p>Sign in</p>"))
	}))
	defer page.Close()

	e := newTestEBay(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("eBay must not be called for an HTML source")
	})

	_, err := e.HostFromURL(context.Background(), page.URL, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrHostingFailed))
}

func TestEBay_MissingToken(t *testing.T) {
	e := NewEBay(config.EBayConfig{})
	_, err := e.HostFromBytes(context.Background(), pngBytes(t), Options{})
	assert.True(t, errors.Is(err, models.ErrHostingFailed))
}

func TestNewEBay_Sandbox(t *testing.T) {
	assert.Equal(t, tradingSandboxEndpoint, NewEBay(config.EBayConfig{Sandbox: true}).Endpoint)
	assert.Equal(t, tradingEndpoint, NewEBay(config.EBayConfig{}).Endpoint)
}

type fakeS3 struct {
	keys        []string
	contentType string
	err         error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, *in.Key)
	f.contentType = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func TestS3_HostFromBytes(t *testing.T) {
	fake := &fakeS3{}
	h := NewS3WithClient(fake, config.S3Config{Bucket: "pics", Region: "ap-northeast-1"})

	data := pngBytes(t)
	first, err := h.HostFromBytes(context.Background(), data, Options{PictureName: "x"})
	require.NoError(t, err)
	second, err := h.HostFromBytes(context.Background(), data, Options{PictureName: "x"})
	require.NoError(t, err)

	assert.Equal(t, first, second, "same content, same key")
	assert.True(t, strings.HasPrefix(first, "https://pics.s3.ap-northeast-1.amazonaws.com/pictures/"))
	assert.Equal(t, "image/jpeg", fake.contentType)

	h = NewS3WithClient(fake, config.S3Config{Bucket: "pics", PublicBaseURL: "https://cdn.example.com"})
	got, err := h.HostFromBytes(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "https://cdn.example.com/pictures/"))
}

func TestS3_UploadError(t *testing.T) {
	h := NewS3WithClient(&fakeS3{err: errors.New("denied")}, config.S3Config{Bucket: "pics"})
	_, err := h.HostFromBytes(context.Background(), pngBytes(t), Options{})
	assert.True(t, errors.Is(err, models.ErrHostingFailed))
}

func TestFromConfig(t *testing.T) {
	h, err := FromConfig(context.Background(), &config.Config{ImageHost: "none"})
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = FromConfig(context.Background(), &config.Config{ImageHost: "ebay"})
	assert.Error(t, err)

	h, err = FromConfig(context.Background(), &config.Config{ImageHost: "ebay", EBay: config.EBayConfig{Token: "t"}})
	require.NoError(t, err)
	assert.IsType(t, &EBay{}, h)

	_, err = FromConfig(context.Background(), &config.Config{ImageHost: "ftp"})
	assert.Error(t, err)
}
