package providers

import "strconv"

// OpenRouter API request/response types

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Plugins     []openRouterPlugin  `json:"plugins,omitempty"`
}

type openRouterPlugin struct {
	ID string `json:"id"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []openRouterContent
}

type openRouterContent struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *openRouterImageURL `json:"image_url,omitempty"`
}

type openRouterImageURL struct {
	URL string `json:"url"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openRouterResponseMessage `json:"message"`
		FinishReason string                    `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	// Error is returned by OpenRouter when something goes wrong at the API/model level
	Error *openRouterError `json:"error,omitempty"`
}

type openRouterResponseMessage struct {
	Role        string                 `json:"role"`
	Content     any                    `json:"content"`
	Annotations []openRouterAnnotation `json:"annotations,omitempty"`
}

// openRouterAnnotation is a web-plugin citation.
type openRouterAnnotation struct {
	Type        string `json:"type"`
	URLCitation struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"url_citation"`
}

func (m openRouterResponseMessage) sources() []Source {
	seen := make(map[string]bool)
	var sources []Source
	for _, a := range m.Annotations {
		u := a.URLCitation.URL
		if a.Type != "url_citation" || u == "" || seen[u] {
			continue
		}
		seen[u] = true
		sources = append(sources, Source{Title: a.URLCitation.Title, URI: u})
	}
	return sources
}

type openRouterError struct {
	Message string `json:"message"`
	Code    any    `json:"code,omitempty"` // Can be string or int
}

// status maps an in-body error code to an HTTP status. Named codes that
// signal overload map to 503 so they are retried.
func (e *openRouterError) status() int {
	switch v := e.Code.(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		switch v {
		case "overloaded", "rate_limit_exceeded":
			return 503
		}
	}
	return 400
}
