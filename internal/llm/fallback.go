package llm

// Deterministic fallback templates used when the model returns an empty blob
// for a file kind. They keep the published site self-consistent.

const fallbackIndex = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
  <title>Auto Generated Page</title>
  <link rel="stylesheet" href="styles.css">
</head>
<body>
  <main class="centered">
    <div class="card">
      <h1>Auto Generated</h1>
      <p>This page was generated based on the brief provided.</p>
      <form id="demoForm">
        <input name="email" placeholder="Email" type="email" required/>
        <input name="password" placeholder="Password" type="password" required/>
        <button type="submit">Submit</button>
      </form>
      <button id="toggleTheme">Toggle Dark</button>
      <div id="out"></div>
    </div>
  </main>
  <script src="script.js"></script>
</body>
</html>`

const fallbackCSS = `:root{
  --bg:#ffffff; --card:#ffffff; --text:#111; --muted:#666; --accent:#0b84ff;
}
body{background:var(--bg); color:var(--text); font-family:Arial, Helvetica, sans-serif; margin:0; min-height:100vh; display:flex; align-items:center; justify-content:center;}
.centered{width:100%; max-width:480px; padding:20px;}
.card{background:var(--card); padding:24px; border-radius:12px; box-shadow:0 8px 30px rgba(16,24,40,0.08);}
input{display:block; width:100%; padding:10px; margin-bottom:10px; border-radius:8px; border:1px solid #ddd;}
button{background:var(--accent); color:white; border:0; padding:10px 14px; border-radius:8px;}
[data-theme='dark']{ --bg:#0b0d11; --card:#0f1114; --text:#e6eef8; --muted:#9aa8bb; --accent:#4ea3ff;}
`

const fallbackJS = `document.getElementById('demoForm').addEventListener('submit', function(e){
  e.preventDefault();
  const fd = new FormData(e.target);
  const out = {email: fd.get('email'), password: fd.get('password')};
  document.getElementById('out').innerText = 'Demo submit: ' + JSON.stringify(out);
});
document.getElementById('toggleTheme').addEventListener('click', function(){
  const cur = document.documentElement.getAttribute('data-theme') || 'light';
  document.documentElement.setAttribute('data-theme', cur === 'dark' ? 'light' : 'dark');
});
`

// Fallback returns the deterministic template for a file kind, or "" when the
// kind has none (README is never substituted).
func Fallback(kind FileKind) string {
	switch kind {
	case KindHTML:
		return fallbackIndex
	case KindCSS:
		return fallbackCSS
	case KindJS:
		return fallbackJS
	default:
		return ""
	}
}
