package command

import (
	"testing"

	"apphub/internal/api"
	"apphub/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildParams() BuildParams {
	return BuildParams{
		PythonExec:    "python3",
		BindURL:       "http://hub.example.com:8000",
		ServicePrefix: "/user/alice/my-app/",
		AuthType:      "oauth",
		ExamplesDir:   "/opt/apphub/examples",
	}
}

func TestBuildAppArgs(t *testing.T) {
	t.Run("panel with explicit filepath", func(t *testing.T) {
		spec := api.AppSpec{
			Framework: "panel",
			Filepath:  "/home/alice/dash.py",
			CondaEnv:  "viz",
		}
		args, err := BuildAppArgs(spec, buildParams())
		require.NoError(t, err)

		// proxy wrapper first
		assert.Equal(t, "python3", args[0])
		assert.Equal(t, "-m", args[1])
		assert.Equal(t, "jhsingle_native_proxy.main", args[2])
		assert.Equal(t, "--authtype=oauth", args[3])
		// framework body carries the bound placeholders
		assert.Contains(t, args, "--conda-env=viz")
		assert.Contains(t, args, "/home/alice/dash.py")
		assert.Contains(t, args, "{--}allow-websocket-origin=hub.example.com:8000")
		assert.Contains(t, args, "{--}prefix=http://hub.example.com:8000")
	})

	t.Run("missing filepath falls back to example", func(t *testing.T) {
		spec := api.AppSpec{Framework: "streamlit"}
		args, err := BuildAppArgs(spec, buildParams())
		require.NoError(t, err)
		assert.Contains(t, args, "/opt/apphub/examples/streamlit_app.py")
	})

	t.Run("voila derives its sub base url from the service prefix", func(t *testing.T) {
		spec := api.AppSpec{Framework: "voila", Filepath: "nb.ipynb"}
		args, err := BuildAppArgs(spec, buildParams())
		require.NoError(t, err)
		assert.Contains(t, args, "{--}Voila.base_url=/user/alice/my-app/")
	})

	t.Run("custom command", func(t *testing.T) {
		spec := api.AppSpec{
			Framework:     "custom",
			CustomCommand: "python serve.py --port 9000",
			CondaEnv:      "base",
		}
		args, err := BuildAppArgs(spec, buildParams())
		require.NoError(t, err)
		assert.Contains(t, args, "--conda-env=base")
		assert.Contains(t, args, "--")
		assert.Contains(t, args, "serve.py")
		// No filepath defaulting for custom
		for _, a := range args {
			assert.NotContains(t, a, "examples")
		}
	})

	t.Run("custom without command fails", func(t *testing.T) {
		spec := api.AppSpec{Framework: "custom"}
		_, err := BuildAppArgs(spec, buildParams())
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeValidation, errors.GetErrorCode(err))
	})

	t.Run("jupyterlab bypasses the proxy wrapper", func(t *testing.T) {
		spec := api.AppSpec{Framework: "jupyterlab"}
		args, err := BuildAppArgs(spec, buildParams())
		require.NoError(t, err)
		assert.Equal(t, []string{"python3", "-m", "jupyterhub.singleuser"}, args)
	})

	t.Run("unknown framework fails validation", func(t *testing.T) {
		spec := api.AppSpec{Framework: "rshiny"}
		_, err := BuildAppArgs(spec, buildParams())
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeValidation, errors.GetErrorCode(err))
	})
}

func TestFrameworkEnv(t *testing.T) {
	t.Run("plotlydash sets the dash prefix", func(t *testing.T) {
		env := FrameworkEnv(api.AppSpec{Framework: "plotlydash"}, "/user/alice/app/")
		assert.Equal(t, "/user/alice/app/", env["DASH_REQUESTS_PATHNAME_PREFIX"])
	})

	t.Run("bokeh loads resources from cdn", func(t *testing.T) {
		env := FrameworkEnv(api.AppSpec{Framework: "bokeh"}, "/user/alice/app/")
		assert.Equal(t, "cdn", env["BOKEH_RESOURCES"])
	})

	t.Run("spec env is preserved", func(t *testing.T) {
		env := FrameworkEnv(api.AppSpec{
			Framework: "panel",
			Env:       map[string]string{"MY_VAR": "1"},
		}, "/p/")
		assert.Equal(t, map[string]string{"MY_VAR": "1"}, env)
	})
}

func TestOriginHost(t *testing.T) {
	tests := []struct {
		name    string
		bindURL string
		want    string
	}{
		{"regular host", "http://hub.example.com:8000", "hub.example.com:8000"},
		{"wildcard bind maps to loopback", "http://0.0.0.0:8000", "127.0.0.1:8000"},
		{"https host", "https://apps.internal", "apps.internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OriginHost(tt.bindURL))
		})
	}
}
