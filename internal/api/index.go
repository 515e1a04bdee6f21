package api

import (
	"fmt"

	"github.com/osteele/liquid"
)

const indexTemplate = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{ title | escape }}</title>
    <style>
      body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; max-width: 420px; margin: 40px auto; padding: 0 16px; text-align: center; }
      h1 { font-size: 1.6rem; margin-bottom: 24px; }
      form { display: flex; flex-direction: column; gap: 12px; align-items: center; }
      button { padding: 10px 18px; border-radius: 6px; border: 1px solid #111827; background: #111827; color: white; cursor: pointer; }
      button:disabled { opacity: 0.6; cursor: not-allowed; }
      .muted { color: #6b7280; font-size: 0.95rem; min-height: 1.25rem; }
      .hidden { display: none; }
      #downloadBtn { margin-top: 20px; }
    </style>
  </head>
  <body>
    <h1>{{ title | escape }}</h1>
    <form id="uploadForm" enctype="multipart/form-data">
      <input id="fileInput" type="file" name="file" accept=".xlsx" required />
      <button id="uploadBtn" type="submit">Upload {{ source_name | escape }}</button>
      <div id="status" class="muted"></div>
    </form>

    <button id="downloadBtn" class="hidden">Download {{ output_name | escape }}</button>

    <script>
      const form = document.getElementById('uploadForm');
      const fileInput = document.getElementById('fileInput');
      const uploadBtn = document.getElementById('uploadBtn');
      const statusBox = document.getElementById('status');
      const downloadBtn = document.getElementById('downloadBtn');

      function showDownload(show) {
        downloadBtn.classList.toggle('hidden', !show);
      }

      async function message(res, fallback) {
        const body = await res.json().catch(() => ({}));
        return body && body.message ? body.message : fallback;
      }

      async function refresh() {
        try {
          const res = await fetch('/status');
          if (res.ok) showDownload((await res.json()).processed);
        } catch (_) {}
      }

      form.addEventListener('submit', async (e) => {
        e.preventDefault();
        if (!fileInput.files.length) return;
        statusBox.textContent = 'Uploading...';
        uploadBtn.disabled = true;
        const data = new FormData();
        data.append('file', fileInput.files[0]);
        try {
          const up = await fetch('/upload', { method: 'POST', body: data });
          if (!up.ok) throw new Error(await message(up, 'Upload failed'));
          statusBox.textContent = 'Processing...';
          showDownload(false);
          const run = await fetch('/run', { method: 'POST' });
          if (!run.ok) throw new Error(await message(run, 'Run failed'));
          statusBox.textContent = 'Download is ready.';
          showDownload(true);
        } catch (err) {
          statusBox.textContent = 'Error: ' + err.message;
        } finally {
          uploadBtn.disabled = false;
        }
      });

      downloadBtn.addEventListener('click', async () => {
        const res = await fetch('/status');
        if (!res.ok || !(await res.json()).processed) return;
        window.location.href = '/download';
        setTimeout(() => { showDownload(false); statusBox.textContent = ''; }, 750);
      });

      document.addEventListener('DOMContentLoaded', refresh);
    </script>
  </body>
</html>
`

// renderIndex renders the upload page once at start-up.
func renderIndex(title, source, output string) (string, error) {
	engine := liquid.NewEngine()
	tpl, err := engine.ParseString(indexTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing index template: %w", err)
	}
	out, err := tpl.RenderString(liquid.Bindings{
		"title":       title,
		"source_name": source,
		"output_name": output,
	})
	if err != nil {
		return "", fmt.Errorf("rendering index template: %w", err)
	}
	return out, nil
}
