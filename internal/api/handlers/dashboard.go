package handlers

import "net/http"

// Dashboard serves the single-page UI at /.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Finance Analyst</title>
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <style>
    body{font-family:Inter,Segoe UI,Arial;margin:24px;background:#f6f8fa;color:#111;}
    .card{background:#fff;padding:18px;border-radius:8px;box-shadow:0 6px 18px rgba(16,24,40,0.06);max-width:900px;margin:auto;}
    h1{margin:0 0 12px;font-size:20px}
    .row{display:flex;gap:12px;flex-wrap:wrap;margin-bottom:12px}
    input[type="file"]{padding:6px}
    button{background:#2563eb;color:#fff;border:0;padding:8px 12px;border-radius:6px;cursor:pointer}
    pre{background:#0f172a;color:#e6eef8;padding:12px;border-radius:6px;overflow:auto}
    .muted{color:#6b7280;font-size:13px}
  </style>
</head>
<body>
  <div class="card">
    <h1>Finance Analyst</h1>
    <p class="muted">Upload your transaction file (CSV / XLSX) then ask questions.</p>

    <div>
      <label><strong>1) Upload transactions</strong></label>
      <div class="row">
        <input id="file" type="file" accept=".csv,.xlsx,.xls" />
        <button id="uploadBtn">Upload &amp; Process</button>
        <div id="uploadStatus" class="muted"></div>
      </div>
      <pre id="uploadResult" style="display:none"></pre>
    </div>

    <hr/>

    <div>
      <label><strong>2) Ask a question</strong></label>
      <div class="row">
        <input id="question" type="text" style="flex:1;padding:8px;border-radius:6px;border:1px solid #e5e7eb" placeholder="How much did I spend on food?" />
        <button id="askBtn">Ask</button>
      </div>
      <div id="answerArea" style="margin-top:12px;display:none">
        <label class="muted">Answer:</label>
        <pre id="answerText"></pre>
      </div>
    </div>

    <hr/>

    <div class="muted">API: <code>POST /api/upload</code>, <code>GET /api/query?question=...</code>, <code>GET /api/summary</code></div>
  </div>

<script>
const uploadBtn = document.getElementById('uploadBtn');
const fileInput = document.getElementById('file');
const uploadStatus = document.getElementById('uploadStatus');
const uploadResult = document.getElementById('uploadResult');
const askBtn = document.getElementById('askBtn');
const questionInput = document.getElementById('question');
const answerArea = document.getElementById('answerArea');
const answerText = document.getElementById('answerText');

uploadBtn.addEventListener('click', async () => {
  const f = fileInput.files[0];
  if (!f) { uploadStatus.textContent = 'Select a file first.'; return; }
  uploadStatus.textContent = 'Uploading...';
  uploadResult.style.display = 'none';
  const form = new FormData();
  form.append('file', f, f.name);
  try {
    const res = await fetch('/api/upload', { method: 'POST', body: form });
    const data = await res.json();
    if (!res.ok) {
      uploadStatus.textContent = 'Error: ' + (data.error ? data.error.message : JSON.stringify(data));
    } else {
      uploadStatus.textContent = 'Success';
      uploadResult.style.display = 'block';
      uploadResult.textContent = JSON.stringify(data.summary, null, 2);
    }
  } catch (e) {
    uploadStatus.textContent = 'Upload failed: ' + e;
  }
});

askBtn.addEventListener('click', async () => {
  const q = questionInput.value.trim();
  if (!q) { answerArea.style.display='block'; answerText.textContent = 'Enter a question.'; return; }
  answerArea.style.display='block';
  answerText.textContent = 'Querying...';
  try {
    const url = '/api/query?' + new URLSearchParams({ question: q });
    const res = await fetch(url);
    const data = await res.json();
    if (!res.ok) {
      answerText.textContent = 'Error: ' + (data.error ? data.error.message : JSON.stringify(data));
    } else {
      answerText.textContent = data.answer || JSON.stringify(data, null, 2);
    }
  } catch (e) {
    answerText.textContent = 'Query failed: ' + e;
  }
});
</script>
</body>
</html>
`
