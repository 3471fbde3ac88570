package command

// Framework identifies which visualization/dashboard runtime an app
// uses. The set is closed; anything else fails validation.
type Framework string

// Supported frameworks.
const (
	FrameworkPanel      Framework = "panel"
	FrameworkBokeh      Framework = "bokeh"
	FrameworkStreamlit  Framework = "streamlit"
	FrameworkPlotlyDash Framework = "plotlydash"
	FrameworkVoila      Framework = "voila"
	FrameworkGradio     Framework = "gradio"
	FrameworkJupyterLab Framework = "jupyterlab"
	FrameworkCustom     Framework = "custom"
)

// Frameworks returns every supported framework identifier.
func Frameworks() []Framework {
	return []Framework{
		FrameworkPanel,
		FrameworkBokeh,
		FrameworkStreamlit,
		FrameworkPlotlyDash,
		FrameworkVoila,
		FrameworkGradio,
		FrameworkJupyterLab,
		FrameworkCustom,
	}
}

// Valid reports whether f is a supported framework.
func (f Framework) Valid() bool {
	for _, known := range Frameworks() {
		if f == known {
			return true
		}
	}
	return false
}

// FrameworkCommand binds a framework to its launch template and the
// example entry file used when an app supplies no filepath.
type FrameworkCommand struct {
	Command          Command
	DefaultEntryFile string
}

// defaultCmd is the generic proxy/auth wrapper prepended to every
// framework body except jupyterlab, which bypasses the proxy.
var defaultCmd = New(
	Tmpl("$python_exec"),
	Lit("-m"),
	Lit("jhsingle_native_proxy.main"),
	Tmpl("--authtype=$authtype"),
)

// genericArgs prefixes ad-hoc custom commands.
var genericArgs = []Arg{
	Tmpl("--conda-env=$conda_env"),
	Lit("--"),
}

// commands maps each framework to its launch template. Tokens of the
// form {--}flag={port} are substituted by the proxy wrapper at runtime
// and are opaque literals here.
var commands = map[Framework]FrameworkCommand{
	FrameworkPanel: {
		DefaultEntryFile: "panel_basic.py",
		Command: New(
			Lit("--destport=0"),
			Tmpl("--conda-env=$conda_env"),
			Tmpl("$python_exec"),
			Lit("-m"),
			Lit("bokeh_root_cmd.main"),
			Tmpl("$filepath"),
			Lit("{--}port={port}"),
			Tmpl("{--}allow-websocket-origin=$origin_host"),
			Lit("{--}server=panel"),
			Tmpl("{--}prefix=$base_url"),
			Lit("--ready-check-path=/ready-check"),
		),
	},
	FrameworkBokeh: {
		DefaultEntryFile: "bokeh_basic.py",
		Command: New(
			Lit("--destport=0"),
			Tmpl("--conda-env=$conda_env"),
			Tmpl("$python_exec"),
			Lit("-m"),
			Lit("bokeh_root_cmd.main"),
			Tmpl("$filepath"),
			Lit("{--}port={port}"),
			Tmpl("{--}allow-websocket-origin=$origin_host"),
			Tmpl("{--}prefix=$base_url"),
			Lit("--ready-check-path=/ready-check"),
		),
	},
	FrameworkStreamlit: {
		DefaultEntryFile: "streamlit_app.py",
		Command: New(
			Lit("--destport=0"),
			Tmpl("--conda-env=$conda_env"),
			Lit("streamlit"),
			Lit("run"),
			Tmpl("$filepath"),
			Lit("{--}server.port={port}"),
			Lit("{--}server.headless=True"),
			Tmpl("{--}browser.serverAddress=$origin_host"),
			Lit("{--}browser.gatherUsageStats=false"),
		),
	},
	FrameworkPlotlyDash: {
		DefaultEntryFile: "plotlydash_app.py",
		Command: New(
			Lit("--destport=0"),
			Tmpl("--conda-env=$conda_env"),
			Tmpl("$python_exec"),
			Lit("-m"),
			Lit("plotlydash_tornado_cmd.main"),
			Tmpl("$filepath"),
			Lit("{--}port={port}"),
		),
	},
	FrameworkVoila: {
		DefaultEntryFile: "voila_basic.ipynb",
		Command: New(
			Lit("--destport=0"),
			Tmpl("--conda-env=$conda_env"),
			Tmpl("$python_exec"),
			Lit("-m"),
			Lit("voila"),
			Tmpl("$filepath"),
			Lit("{--}port={port}"),
			Lit("{--}no-browser"),
			Tmpl("{--}Voila.base_url=$voila_base_url"),
			Lit("{--}Voila.server_url=/"),
			Tmpl("{--}Voila.tornado_settings=allow_origin=$origin_host"),
			Lit("--progressive"),
			Lit("--ready-check-path=/voila/static/"),
		),
	},
	FrameworkGradio: {
		DefaultEntryFile: "gradio_basic.py",
		Command: New(
			Lit("--destport=0"),
			Tmpl("--conda-env=$conda_env"),
			Tmpl("$python_exec"),
			Tmpl("$filepath"),
			Lit("{--}server-port={port}"),
			Tmpl("{--}root-path=$jh_service_prefix"),
		),
	},
	// jupyterlab bypasses the proxy wrapper and launches the stock
	// single-user server directly.
	FrameworkJupyterLab: {
		Command: New(
			Tmpl("$python_exec"),
			Lit("-m"),
			Lit("jupyterhub.singleuser"),
		),
	},
}

// Lookup returns the launch template for a framework. The custom
// framework has no registry entry; its command is built per-app from the
// user-supplied shell string.
func Lookup(f Framework) (FrameworkCommand, bool) {
	fc, ok := commands[f]
	return fc, ok
}

// DefaultCmd returns the generic proxy wrapper template.
func DefaultCmd() Command {
	return defaultCmd
}
