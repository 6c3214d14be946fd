package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/essay-feedback/internal/apperror"
	"github.com/giantswarm/essay-feedback/internal/evaluator"
	"github.com/giantswarm/essay-feedback/internal/prompt"
	"github.com/giantswarm/essay-feedback/internal/selector"
	"github.com/giantswarm/essay-feedback/internal/testutil"
)

const scenarioBatch = `[{"tema":"T","texto":"X","competencias":[{"competencia":"C1","nota":120}]}]`

const scenarioOutput = `{
    "tema": "T",
    "texto": "X",
    "competencias": [
        {
            "competencia": "C1",
            "nota": 120
        }
    ],
    "cometarios": "ok"
}
`

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redacoes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEvaluator(t *testing.T, client *testutil.MockLLMClient) *evaluator.Evaluator {
	t.Helper()
	cfg, err := prompt.Default()
	require.NoError(t, err)
	b, err := prompt.NewBuilder(cfg)
	require.NoError(t, err)
	return evaluator.New(client, b, evaluator.Config{})
}

func TestRunEvaluationScenario(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "ok"}
	path := writeBatch(t, scenarioBatch)

	var prompts, out bytes.Buffer
	p := selector.New(strings.NewReader("1\n"), &prompts)

	err := runEvaluation(context.Background(), p, &out, newTestEvaluator(t, client), path, 0)
	require.NoError(t, err)

	assert.Equal(t, resultHeader+"\n"+scenarioOutput, out.String())
	assert.Contains(t, prompts.String(), "Existem 1 redações no arquivo")
	assert.Equal(t, 1, client.Calls)
}

func TestRunEvaluationAsksForPath(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "ok"}
	path := writeBatch(t, scenarioBatch)

	var out bytes.Buffer
	p := selector.New(strings.NewReader(path+"\n0\n2\n1\n"), &out)

	err := runEvaluation(context.Background(), p, &out, newTestEvaluator(t, client), "", 0)
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, selector.PathPrompt))
	assert.Equal(t, 2, strings.Count(s, selector.OutOfRange))
	assert.True(t, strings.HasSuffix(s, resultHeader+"\n"+scenarioOutput))
}

func TestRunEvaluationSelectsSecondRecord(t *testing.T) {
	client := &testutil.MockLLMClient{DefaultResponse: "Sugestão nova"}
	path := writeBatch(t, `[
		{"tema":"A","texto":"a","competencias":[]},
		{"tema":"B","texto":"b","competencias":[{"competencia":"C1","nota":40}],"cometarios":"Antiga"}
	]`)

	var out bytes.Buffer
	p := selector.New(strings.NewReader(""), &out)

	err := runEvaluation(context.Background(), p, &out, newTestEvaluator(t, client), path, 2)
	require.NoError(t, err)

	body := strings.TrimPrefix(out.String(), resultHeader+"\n")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &rec))
	assert.Equal(t, "B", rec["tema"])
	assert.Equal(t, "Antiga\n\nSugestão nova", rec["cometarios"])
	assert.Contains(t, client.LastRequest.UserMessage, "Competência 1: Nota 40 | C1")
}

func TestRunEvaluationMalformedRecordOnlyFailsWhenChosen(t *testing.T) {
	path := writeBatch(t, `[
		{"tema":"T","texto":"X","competencias":[{"competencia":"C1","nota":120}]},
		{"tema":5,"texto":"Y","competencias":[]}
	]`)

	client := &testutil.MockLLMClient{DefaultResponse: "ok"}
	var out bytes.Buffer
	err := runEvaluation(context.Background(), selector.New(strings.NewReader(""), &out), &out,
		newTestEvaluator(t, client), path, 1)
	require.NoError(t, err)
	assert.Equal(t, resultHeader+"\n"+scenarioOutput, out.String())

	out.Reset()
	err = runEvaluation(context.Background(), selector.New(strings.NewReader(""), &out), &out,
		newTestEvaluator(t, client), path, 2)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "Erro: A redação tem campos com tipo inválido: tema.", userMessage(err))
	assert.Empty(t, out.String())
	assert.Equal(t, 1, client.Calls)
}

func TestRunEvaluationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		input   string
		index   int
		client  *testutil.MockLLMClient
		kind    apperror.Kind
		prompts bool
	}{
		{
			name:    "invalid json",
			content: `[{`,
			kind:    apperror.KindParse,
		},
		{
			name:    "empty batch",
			content: `[]`,
			kind:    apperror.KindValidation,
		},
		{
			name:    "index out of range",
			content: scenarioBatch,
			index:   2,
			kind:    apperror.KindValidation,
		},
		{
			name:    "input ends before a choice",
			content: scenarioBatch,
			input:   "5\n",
			kind:    apperror.KindUnexpected,
			prompts: true,
		},
		{
			name:    "backend failure",
			content: scenarioBatch,
			index:   1,
			client:  &testutil.MockLLMClient{Err: errors.New("connection refused")},
			kind:    apperror.KindBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := tt.client
			if client == nil {
				client = &testutil.MockLLMClient{}
			}
			path := writeBatch(t, tt.content)

			var prompts, out bytes.Buffer
			p := selector.New(strings.NewReader(tt.input), &prompts)

			err := runEvaluation(context.Background(), p, &out, newTestEvaluator(t, client), path, tt.index)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
			assert.Empty(t, out.String())
			assert.Equal(t, tt.prompts, strings.Contains(prompts.String(), selector.IndexPrompt))
		})
	}
}

func TestRunEvaluationMissingFile(t *testing.T) {
	var out bytes.Buffer
	p := selector.New(strings.NewReader(""), &out)
	path := filepath.Join(t.TempDir(), "missing.json")

	err := runEvaluation(context.Background(), p, &out, newTestEvaluator(t, &testutil.MockLLMClient{}), path, 0)
	require.Error(t, err)
	assert.Equal(t, apperror.KindFile, apperror.KindOf(err))
	assert.Equal(t, "Erro: O arquivo '"+path+"' não foi encontrado.", userMessage(err))
	assert.Empty(t, out.String())
}

func TestRootCommandAgainstFakeBackend(t *testing.T) {
	for _, key := range []string{"ESSAY_FEEDBACK_MODEL", "ESSAY_FEEDBACK_ENDPOINT", "ESSAY_FEEDBACK_API_KEY",
		"ESSAY_FEEDBACK_PROMPTS", "ESSAY_FEEDBACK_RETRIES", "OLLAMA_HOST", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}

	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: got.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "ok"},
			}},
		})
	}))
	defer srv.Close()

	path := writeBatch(t, scenarioBatch)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("1\n"))
	rootCmd.SetArgs([]string{path, "--endpoint", srv.URL + "/v1"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	assert.True(t, strings.HasSuffix(out.String(), resultHeader+"\n"+scenarioOutput))
	assert.Equal(t, "gemma:7b", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "parse",
			err:  apperror.Wrap(apperror.KindParse, errors.New("unexpected end of JSON input"), "O conteúdo do arquivo 'a.json' não é um JSON válido"),
			want: "Erro: O conteúdo do arquivo 'a.json' não é um JSON válido.",
		},
		{
			name: "empty batch",
			err:  apperror.New(apperror.KindValidation, "O arquivo não contém redações válidas"),
			want: "Erro: O arquivo não contém redações válidas.",
		},
		{
			name: "backend",
			err:  apperror.Wrap(apperror.KindBackend, errors.New("connection refused"), "chat completion failed"),
			want: "Erro na chamada ao modelo: chat completion failed: connection refused.",
		},
		{
			name: "unexpected",
			err:  errors.New("boom"),
			want: "Erro inesperado: boom.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
