package server

// indexHTML is the embedded single-page client: direct search, log-derived
// search, and a chat panel over the same endpoints the API exposes.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>MOS Agent</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { color: #333; }
        .section { margin-bottom: 30px; border: 1px solid #ddd; padding: 20px; border-radius: 5px; }
        input, textarea, button { padding: 8px; margin: 5px; }
        button { background: #007bff; color: white; border: none; cursor: pointer; }
        button:hover { background: #0056b3; }
        #results { margin-top: 20px; }
        .result { border: 1px solid #ccc; padding: 10px; margin: 10px 0; border-radius: 5px; background: #f9f9f9; }
        .result:hover { background: #f0f0f0; }
        #chat { height: 300px; overflow-y: auto; border: 1px solid #ccc; padding: 10px; margin-bottom: 10px; }
        .message { margin: 5px 0; }
        .user { color: #007bff; }
        .assistant { color: #28a745; }
    </style>
</head>
<body>
    <div class="container">
        <h1>MOS Agent</h1>

        <div class="section">
            <h2>Direct MOS Search</h2>
            <input type="text" id="query" placeholder="Enter search terms (e.g., ORA-00600)">
            <input type="number" id="maxPerQuery" value="5" min="1" max="20" title="Max results per query">
            <button onclick="runSearch()">Search</button>
        </div>

        <div class="section">
            <h2>Search from Log</h2>
            <textarea id="logText" rows="8" placeholder="Paste error log or stack trace here"></textarea><br>
            <input type="number" id="maxQueries" value="4" min="1" max="25" title="Max queries to generate">
            <input type="number" id="maxPerQueryLog" value="5" min="1" max="20" title="Max results per query">
            <button onclick="runLogSearch()">Search from Log</button>
        </div>

        <div class="section">
            <h2>Chat about Results</h2>
            <div id="chat"></div>
            <input type="text" id="message" placeholder="Ask questions about the search results" style="width: 70%;">
            <button onclick="sendMessage()">Send</button>
        </div>

        <div id="results"></div>
    </div>

    <script>
        let messages = [];
        async function runSearch() {
            const query = document.getElementById('query').value.trim();
            if (!query) {
                alert('Please enter a search query');
                return;
            }
            const maxPer = parseInt(document.getElementById('maxPerQuery').value);
            const resp = await fetch('/search', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ queries: [query], max_per_query: maxPer })
            });
            const data = await resp.json();
            renderResults(data);
        }

        async function runLogSearch() {
            const log = document.getElementById('logText').value.trim();
            if (!log) {
                alert('Please paste log text first');
                return;
            }
            const maxQueries = parseInt(document.getElementById('maxQueries').value);
            const maxPer = parseInt(document.getElementById('maxPerQueryLog').value);
            const resp = await fetch('/search/log', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ log_text: log, max_queries: maxQueries, max_per_query: maxPer })
            });
            const data = await resp.json();
            renderResults(data.results || []);
            if (data.generated_queries && data.generated_queries.length > 0) {
                chatter('assistant', 'Generated queries: ' + data.generated_queries.join(', '));
            }
        }

        async function sendMessage() {
            const message = document.getElementById('message').value.trim();
            if (!message) return;
            document.getElementById('message').value = '';
            messages.push({ role: 'user', content: message });
            chatter('user', message);
            const resp = await fetch('/chat', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ messages: messages })
            });
            const data = await resp.json();
            if (data.reply) {
                messages.push({ role: 'assistant', content: data.reply });
                chatter('assistant', data.reply);
            } else {
                chatter('assistant', 'No response');
            }
        }

        function renderResults(results) {
            const container = document.getElementById('results');
            container.innerHTML = '<h3>Search Results</h3>';
            if (!results || results.length === 0) {
                container.innerHTML += '<p>No results found</p>';
                return;
            }
            results.forEach((item, index) => {
                const div = document.createElement('div');
                div.className = 'result';
                div.innerHTML = ` + "`" + `
                    <strong>${index + 1}. ${item.title || 'No title'}</strong><br/>
                    <small>Doc ID: ${item.doc_id || 'N/A'}</small><br/>
                    <small><a href="${item.url || '#'}" target="_blank">${item.url || 'No URL'}</a></small><br/>
                    <em>${item.snippet || 'No snippet available'}</em>
                ` + "`" + `;
                container.appendChild(div);
            });
        }

        function chatter(role, content) {
            const chat = document.getElementById('chat');
            const div = document.createElement('div');
            div.className = ` + "`" + `message ${role}` + "`" + `;
            div.innerHTML = ` + "`" + `<strong>${role === 'user' ? 'You' : 'Assistant'}:</strong> ${content}` + "`" + `;
            chat.appendChild(div);
            chat.scrollTop = chat.scrollHeight;
        }

        document.getElementById('query').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') runSearch();
        });
        document.getElementById('message').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>
`
