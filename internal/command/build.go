package command

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"apphub/internal/api"
	"apphub/internal/errors"
)

// BuildParams carries the spawn-time environment an app's launch
// arguments are bound against.
type BuildParams struct {
	// PythonExec is the interpreter used for proxy and framework
	// entrypoints.
	PythonExec string
	// BindURL is the hub's externally visible bind URL.
	BindURL string
	// ServicePrefix is the JUPYTERHUB_SERVICE_PREFIX of the spawned
	// server.
	ServicePrefix string
	// AuthType configures the proxy wrapper's auth mode.
	AuthType string
	// ExamplesDir holds the bundled example apps used when a spec
	// supplies no filepath.
	ExamplesDir string
}

// BuildAppArgs synthesizes the full launch argument list for an app:
// proxy wrapper plus framework body, with every placeholder bound. The
// bindings passed to substitution are always the full superset; each
// token picks what it references.
func BuildAppArgs(spec api.AppSpec, p BuildParams) ([]string, error) {
	fw := Framework(spec.Framework)
	if !fw.Valid() {
		return nil, errors.ErrValidation(fmt.Sprintf("unknown framework %q", spec.Framework), nil)
	}

	filepath := spec.Filepath
	if filepath == "" && fw != FrameworkJupyterLab && fw != FrameworkCustom {
		fc, _ := Lookup(fw)
		filepath = path.Join(p.ExamplesDir, fc.DefaultEntryFile)
	}

	var body Command
	switch fw {
	case FrameworkCustom:
		custom, err := CustomCommand(spec.CustomCommand)
		if err != nil {
			return nil, err
		}
		body = custom
	default:
		fc, ok := Lookup(fw)
		if !ok {
			return nil, errors.ErrValidation(fmt.Sprintf("no launch template for framework %q", fw), nil)
		}
		body = fc.Command
	}

	full := defaultCmd.Concat(body)
	if fw == FrameworkJupyterLab {
		// No proxy wrapper for the stock single-user server.
		full = body
	}

	return full.GetSubstitutedArgs(map[string]string{
		"python_exec":       p.PythonExec,
		"filepath":          filepath,
		"origin_host":       OriginHost(p.BindURL),
		"base_url":          p.BindURL,
		"jh_service_prefix": p.ServicePrefix,
		"voila_base_url":    p.ServicePrefix,
		"conda_env":         spec.CondaEnv,
		"authtype":          p.AuthType,
	})
}

// FrameworkEnv returns the process environment additions for an app:
// the spec's own variables plus framework-specific fixups.
func FrameworkEnv(spec api.AppSpec, servicePrefix string) map[string]string {
	env := make(map[string]string, len(spec.Env)+1)
	for k, v := range spec.Env {
		env[k] = v
	}

	switch Framework(spec.Framework) {
	case FrameworkPlotlyDash:
		env["DASH_REQUESTS_PATHNAME_PREFIX"] = servicePrefix
	case FrameworkBokeh:
		// Bokeh 3.2.x loads static assets from localhost behind a
		// proxy; serving them from the CDN sidesteps that.
		// https://github.com/bokeh/bokeh/issues/13170
		env["BOKEH_RESOURCES"] = "cdn"
	}
	return env
}

// OriginHost extracts the websocket/allowed-origin host from the hub's
// bind URL. A 0.0.0.0 bind is mapped to the loopback host for local
// docker development.
func OriginHost(bindURL string) string {
	parsed, err := url.Parse(bindURL)
	if err != nil {
		return bindURL
	}
	if strings.Contains(parsed.Host, "0.0.0.0") {
		return "127.0.0.1:8000"
	}
	return parsed.Host
}
