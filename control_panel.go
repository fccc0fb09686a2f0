// control_panel.go - the operator panel page served at /.
package main

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
  body { background: #111; color: #ddd; font-family: monospace; margin: 0; padding: 16px; }
  h1 { font-size: 18px; margin: 0 0 12px 0; }
  #layout { display: flex; gap: 16px; align-items: flex-start; }
  #view img { width: {{ div .Width 2 }}px; height: {{ div .Height 2 }}px; background: #000; border: 1px solid #333; }
  #controls { min-width: 320px; }
  fieldset { border: 1px solid #333; margin-bottom: 12px; }
  legend { color: #8f8; }
  label { display: block; margin: 6px 0 2px 0; }
  input[type=range] { width: 100%; }
  button { background: #222; color: #ddd; border: 1px solid #444; padding: 4px 12px; margin-right: 6px; cursor: pointer; }
  button:hover { border-color: #8f8; }
  select, input[type=text], input[type=number] { background: #222; color: #ddd; border: 1px solid #444; width: 100%; }
  #status { color: #8f8; min-height: 1.2em; }
  #status.error { color: #f88; }
</style>
</head>
<body>
<h1>{{ upper .Title }} &mdash; {{ .Width }}x{{ .Height }} @ {{ .TargetFPS }} fps</h1>
<div id="layout">
  <div id="view"><img id="stream" src="/stream" alt="output"></div>
  <div id="controls">
    <fieldset>
      <legend>transport</legend>
      <button onclick="post('/api/start')">start</button>
      <button onclick="post('/api/stop')">stop</button>
      <div id="status"></div>
    </fieldset>
    <fieldset>
      <legend>mode</legend>
      <select id="modes"></select>
      <button onclick="loadMode()">load</button>
      <button onclick="refreshModes()">refresh</button>
    </fieldset>
    <fieldset>
      <legend>knobs</legend>
{{- range until 5 }}
      <label>knob{{ add1 . }} <span id="k{{ add1 . }}v">0.50</span></label>
      <input type="range" id="k{{ add1 . }}" min="0" max="1" step="0.01" value="0.5"
             oninput="setKnob({{ add1 . }}, this.value)">
{{- end }}
    </fieldset>
    <fieldset>
      <legend>audio</legend>
      <select id="atype">
        <option>sine</option><option>noise</option><option>beat</option>
        <option>silence</option><option>file</option>
      </select>
      <label>level</label>
      <input type="range" id="alevel" min="0" max="1" step="0.01" value="0.5">
      <label>frequency</label>
      <input type="number" id="afreq" value="440">
      <button onclick="setAudio()">apply</button>
    </fieldset>
    <fieldset>
      <legend>track</legend>
      <input type="text" id="track" placeholder="path to .wav or .mp3">
      <button onclick="playTrack()">play</button>
      <button onclick="post('/api/track', {stop: true})">stop</button>
    </fieldset>
  </div>
</div>
<script>
function note(msg, isError) {
  const el = document.getElementById('status');
  el.textContent = msg || '';
  el.className = isError ? 'error' : '';
}
async function post(url, body) {
  const resp = await fetch(url, {method: 'POST', headers: {'Content-Type': 'application/json'},
                                 body: JSON.stringify(body || {})});
  const data = await resp.json();
  note(data.message, data.status === 'error');
  return data;
}
function setKnob(i, v) {
  document.getElementById('k' + i + 'v').textContent = Number(v).toFixed(2);
  fetch('/api/knob', {method: 'POST', headers: {'Content-Type': 'application/json'},
                      body: JSON.stringify({knob: i, value: Number(v)})});
}
function setAudio() {
  post('/api/audio', {type: document.getElementById('atype').value,
                      level: Number(document.getElementById('alevel').value),
                      frequency: Number(document.getElementById('afreq').value)});
}
function loadMode() {
  post('/api/mode/load', {path: document.getElementById('modes').value});
}
function playTrack() {
  post('/api/track', {path: document.getElementById('track').value});
}
async function refreshModes() {
  const resp = await fetch('/api/modes');
  const data = await resp.json();
  const sel = document.getElementById('modes');
  sel.innerHTML = '';
  (data.modes || []).forEach(function (m) {
    const opt = document.createElement('option');
    opt.value = m; opt.textContent = m;
    sel.appendChild(opt);
  });
}
async function poll() {
  try {
    const resp = await fetch('/api/status');
    const data = await resp.json();
    if (data.last_status && data.last_status.message) {
      note(data.last_status.message, data.last_status.level === 'error');
    }
  } catch (e) {}
  setTimeout(poll, 2000);
}
refreshModes();
poll();
</script>
</body>
</html>
`
