package monitoring

import "net/http"

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>EtherSim Monitor</title>
<style>
body { font-family: monospace; margin: 2em; }
#cable { font-size: 1.5em; letter-spacing: 0.3em; }
table { border-collapse: collapse; margin-top: 1em; }
td, th { border: 1px solid #999; padding: 0.3em 0.8em; }
</style>
</head>
<body>
<h1>EtherSim</h1>
<p>Round <span id="round">-</span></p>
<p id="cable"></p>
<table>
<thead><tr><th>Device</th><th>Pos</th><th>Status</th>
<th>Completed</th></tr></thead>
<tbody id="devices"></tbody>
</table>
<p>
<button onclick="fetch('/api/pause')">Pause</button>
<button onclick="fetch('/api/continue')">Continue</button>
</p>
<script>
async function refresh() {
	const cable = await (await fetch('/api/cable')).json();
	document.getElementById('round').textContent = cable.round;
	document.getElementById('cable').textContent = cable.display;

	const devices = await (await fetch('/api/devices')).json();
	document.getElementById('devices').innerHTML = devices.map(d =>
		'<tr><td>' + d.name + '</td><td>' + d.position + '</td><td>' +
		d.status + '</td><td>' + d.completed + '/' + d.scheduled +
		'</td></tr>').join('');
}
setInterval(refresh, 200);
refresh();
</script>
</body>
</html>
`

func (m *Monitor) dashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, err := w.Write([]byte(dashboardHTML))
	dieOnErr(err)
}
