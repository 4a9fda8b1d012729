package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/norma-dev/levelapp/pkg/httpclient"
)

// PostChat queries the target chatbot at <baseURL><chatPath>, falling back
// to the bare root path on a non-200 response, per
// original_source/level_core/simluators/chat_client.py's post_chat.
func PostChat(ctx context.Context, client *httpclient.Client, baseURL, chatPath string, headers map[string]string, prompt string) (string, error) {
	base := strings.TrimSuffix(baseURL, "/")
	path := chatPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	primaryURL := base + path
	var raw map[string]any
	err := client.PostJSONWithHeaders(ctx, primaryURL, headers, map[string]string{"prompt": prompt}, &raw)
	if err != nil && path != "/" {
		fallbackURL := base + "/"
		err = client.PostJSONWithHeaders(ctx, fallbackURL, headers, map[string]string{"prompt": prompt}, &raw)
	}
	if err != nil {
		return "", fmt.Errorf("rag: chatbot query failed: %w", err)
	}

	if response, ok := raw["response"]; ok {
		if s, ok := response.(string); ok {
			return s, nil
		}
	}
	return fmt.Sprintf("%v", raw), nil
}
