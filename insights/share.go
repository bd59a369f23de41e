package insights

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"time"
)

const (
	// ShareFallbackDelay is how long a mobile share waits for the LinkedIn
	// app to take over before opening the web share page instead.
	ShareFallbackDelay = 1500 * time.Millisecond
	// CopyAckDuration is how long "copied" stays visible after a copy.
	CopyAckDuration = 2 * time.Second
)

var mobileAgent = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini`)

func IsMobile(userAgent string) bool {
	return mobileAgent.MatchString(userAgent)
}

func linkedInWebShare(articleURL string) string {
	return "https://www.linkedin.com/sharing/share-offsite/?url=" + url.QueryEscape(articleURL)
}

func linkedInAppShare(articleURL string) string {
	return "linkedin://shareArticle?mini=true&url=" + url.QueryEscape(articleURL)
}

// SharePlan is one LinkedIn share attempt. On mobile the app deeplink is
// tried first and Fallback opens only if the page is still visible after
// FallbackAfter. Elsewhere Fallback opens straight away in a popup.
type SharePlan struct {
	Mobile        bool
	Primary       string
	Fallback      string
	FallbackAfter time.Duration
	Popup         bool
}

func LinkedInShare(userAgent, articleURL string) SharePlan {
	web := linkedInWebShare(articleURL)
	if !IsMobile(userAgent) {
		return SharePlan{Fallback: web, Popup: true}
	}
	return SharePlan{
		Mobile:        true,
		Primary:       linkedInAppShare(articleURL),
		Fallback:      web,
		FallbackAfter: ShareFallbackDelay,
	}
}

// ShareLinks is the serialisable form of the share plan for the page.
type ShareLinks struct {
	URL             string `json:"url"`
	LinkedInWeb     string `json:"linkedin_web"`
	LinkedInApp     string `json:"linkedin_app,omitempty"`
	FallbackAfterMS int64  `json:"fallback_after_ms,omitempty"`
	CopyAckMS       int64  `json:"copy_ack_ms"`
}

func NewShareLinks(articleURL, userAgent string) ShareLinks {
	plan := LinkedInShare(userAgent, articleURL)
	return ShareLinks{
		URL:             articleURL,
		LinkedInWeb:     plan.Fallback,
		LinkedInApp:     plan.Primary,
		FallbackAfterMS: plan.FallbackAfter.Milliseconds(),
		CopyAckMS:       CopyAckDuration.Milliseconds(),
	}
}

// Opener opens a share target: a deeplink, a tab or a popup window.
type Opener interface {
	Open(target string, popup bool) error
}

// Deeplinker runs a SharePlan. After is the timer source; tests replace it.
type Deeplinker struct {
	Opener Opener
	After  func(time.Duration) <-chan time.Time
}

func NewDeeplinker(o Opener) *Deeplinker {
	return &Deeplinker{Opener: o, After: time.After}
}

// Run performs the plan and returns the target that ended up opened.
// pageHidden is consulted once, when the fallback timer fires: a hidden
// page means the app took over and nothing more is done.
func (d *Deeplinker) Run(ctx context.Context, plan SharePlan, pageHidden func() bool) (string, error) {
	if !plan.Mobile {
		return plan.Fallback, d.Opener.Open(plan.Fallback, plan.Popup)
	}

	if err := d.Opener.Open(plan.Primary, false); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return plan.Primary, ctx.Err()
	case <-d.After(plan.FallbackAfter):
	}

	if pageHidden() {
		return plan.Primary, nil
	}
	return plan.Fallback, d.Opener.Open(plan.Fallback, false)
}

type Clipboard interface {
	WriteText(text string) error
}

// CopyAck copies the article URL and reports a transient "copied" state.
type CopyAck struct {
	clipboard Clipboard
	now       func() time.Time

	mu       sync.Mutex
	copiedAt time.Time
}

func NewCopyAck(c Clipboard) *CopyAck {
	return &CopyAck{clipboard: c, now: time.Now}
}

func (c *CopyAck) Copy(articleURL string) error {
	if err := c.clipboard.WriteText(articleURL); err != nil {
		return err
	}
	c.mu.Lock()
	c.copiedAt = c.now()
	c.mu.Unlock()
	return nil
}

func (c *CopyAck) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.copiedAt.IsZero() && c.now().Sub(c.copiedAt) < CopyAckDuration
}
