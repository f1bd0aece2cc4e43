package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
}

func (f *fakeAPI) GetParameter(_ context.Context, _ *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(`{"k":"v"}`),
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, `{"k":"v"}`, v)
}

func TestGetParameter_HappyPath_SecureString(t *testing.T) {
	typeStr := "SecureString"
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(`{"k":"v"}`), Type: types.ParameterType(typeStr),
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, `{"k":"v"}`, v)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	api := &fakeAPI{}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

// staticGetter implements Getter with a fixed value for the helper tests.
type staticGetter struct {
	value string
	err   error
}

func (g *staticGetter) GetParameter(context.Context, string) (string, error) {
	return g.value, g.err
}

func TestGetJSON_HappyPath(t *testing.T) {
	g := &staticGetter{value: `{"sid":"AC123","auth_token":"tok"}`}
	var out struct {
		SID       string `json:"sid"`
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, GetJSON(context.Background(), g, "p", &out))
	require.Equal(t, "AC123", out.SID)
	require.Equal(t, "tok", out.AuthToken)
}

func TestGetJSON_BadPayload(t *testing.T) {
	g := &staticGetter{value: `not json`}
	var out map[string]string
	err := GetJSON(context.Background(), g, "p", &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode parameter")
}

func TestGetJSON_GetterError(t *testing.T) {
	g := &staticGetter{err: errors.New("boom")}
	var out map[string]string
	require.ErrorContains(t, GetJSON(context.Background(), g, "p", &out), "boom")
}

func TestGetList_SplitsAndTrims(t *testing.T) {
	g := &staticGetter{value: " +15551234567, +15559876543 ,,"}
	list, err := GetList(context.Background(), g, "p")
	require.NoError(t, err)
	require.Equal(t, []string{"+15551234567", "+15559876543"}, list)
}

func TestGetList_GetterError(t *testing.T) {
	g := &staticGetter{err: errors.New("boom")}
	_, err := GetList(context.Background(), g, "p")
	require.ErrorContains(t, err, "boom")
}
