package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postsmith/internal/types"
)

func TestGenerate_Post(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	out, err := execute(t, env, "generate", "--page", env.page, "--api-key", "sk-test", "--tone", "Direct", "--topic", "remote work")
	require.NoError(t, err)

	assert.Equal(t, "Post number 1\n", out)
	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `Profession/Headline: "Staff Engineer at Acme"`)
	assert.Contains(t, prompts[0], `About: "I build reliable systems."`)
	assert.Contains(t, prompts[0], `Selected Tone: "Direct"`)
	assert.Contains(t, prompts[0], "remote work")
}

func TestGenerate_VariantsReuseProfileWithRetone(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	out, err := execute(t, env, "generate", "--page", env.page, "--api-key", "sk-test",
		"--tone", "Direct", "--variants", "2", "--retone", "Warm")
	require.NoError(t, err)

	assert.Equal(t, "Post number 1\n---\nPost number 2\n", out)
	prompts := fake.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], `Selected Tone: "Direct"`)
	assert.Contains(t, prompts[1], `Selected Tone: "Warm"`)
	assert.Contains(t, prompts[1], `Profession/Headline: "Staff Engineer at Acme"`)
}

func TestGenerate_KeyFromStore(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	_, err := execute(t, env, "keys", "set", "openai_api_key", "sk-from-store")
	require.NoError(t, err)

	out, err := execute(t, env, "generate", "--page", env.page)
	require.NoError(t, err)
	assert.Equal(t, "Post number 1\n", out)
}

func TestGenerate_MissingKeyFailsBeforeAnyCall(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	_, err := execute(t, env, "generate", "--page", env.page)
	require.Error(t, err)

	assert.Equal(t, types.KindPrecondition, types.Classify(err))
	assert.Contains(t, err.Error(), "enter API key for OpenAI")
	assert.Empty(t, fake.Prompts())
}

func TestGenerate_CommentWithoutArticle(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	_, err := execute(t, env, "generate", "--page", env.page, "--api-key", "sk-test", "--mode", "comment")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "article URL")
	assert.Empty(t, fake.Prompts())
}

func TestGenerate_CommentWithArticleText(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	_, err := execute(t, env, "generate", "--page", env.page, "--api-key", "sk-test",
		"--mode", "comment", "--article-text", "Teams that ship weekly learn faster.")
	require.NoError(t, err)

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Teams that ship weekly learn faster.")
}

func TestGenerate_InvalidFlags(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := execute(t, env, "generate", "--page", env.page, "--mode", "thread")
	assert.Error(t, err)

	_, err = execute(t, env, "generate", "--page", env.page, "--provider", "claude", "--api-key", "k")
	assert.Error(t, err)

	_, err = execute(t, env, "generate", "--page", env.page, "--variants", "0", "--api-key", "k")
	assert.Error(t, err)

	_, err = execute(t, env, "generate", "--page", env.page, "--page-url", "https://www.linkedin.com/in/x")
	assert.Error(t, err)
}

func TestGenerate_MissingPage(t *testing.T) {
	fake := newFakeOpenAI(t)
	env := newTestEnv(t, fake.server.URL+"/v1/")

	_, err := execute(t, env, "generate", "--api-key", "sk-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open a profile page first")
}
