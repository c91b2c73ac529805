package web

// indexHTML is the single-page search UI. It renders results with
// textContent so note text is never interpreted as markup.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Storybank</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
h1 { color: #333; }
input { width: 100%; padding: 15px; font-size: 18px; border: 2px solid #ddd; border-radius: 8px; margin-bottom: 20px; box-sizing: border-box; }
input:focus { outline: none; border-color: #007aff; }
button { padding: 15px 30px; font-size: 16px; background: #007aff; color: white; border: none; border-radius: 8px; cursor: pointer; }
button:hover { background: #005ecb; }
.result { background: #f9f9f9; padding: 20px; margin: 15px 0; border-radius: 8px; border-left: 4px solid #007aff; }
.path { color: #666; font-size: 14px; margin-bottom: 10px; }
.score { color: #999; font-size: 12px; }
.text { white-space: pre-wrap; line-height: 1.6; }
.error { color: #c00; }
</style>
</head>
<body>
<h1>Storybank</h1>
<form id="form">
<input type="text" id="query" placeholder="What are you talking about?" autofocus>
<button type="submit">Search</button>
</form>
<div id="results"></div>
<script>
function div(cls, text) {
  const el = document.createElement('div');
  el.className = cls;
  el.textContent = text;
  return el;
}
document.getElementById('form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const out = document.getElementById('results');
  out.replaceChildren();
  const query = document.getElementById('query').value;
  const res = await fetch('/search?q=' + encodeURIComponent(query));
  const data = await res.json();
  if (!res.ok) {
    out.appendChild(div('error', data.message || data.error));
    return;
  }
  data.forEach((r) => {
    const box = div('result', '');
    const where = [r.metadata && r.metadata.title, r.section].filter(Boolean).join(' / ');
    box.appendChild(div('path', where));
    box.appendChild(div('score', 'Score: ' + r.score.toFixed(3)));
    box.appendChild(div('text', r.text));
    out.appendChild(box);
  });
});
</script>
</body>
</html>
`
