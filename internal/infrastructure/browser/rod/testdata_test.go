package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
	<script>console.log("page", "ready"); console.warn("careful");</script>
</body>
</html>`

	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<input id="username" type="text" value="" />
	<input class="field" type="text" />
	<input class="field" type="text" />
	<select id="color">
		<option value="r">Red</option>
		<option value="g">Green</option>
	</select>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button class="btn" onclick="document.getElementById('result').textContent = 'first'">Go</button>
	<button class="btn" onclick="document.getElementById('result').textContent = 'second'">Go</button>
	<div><span id="hello">Say   Hello</span></div>
	<div id="result"></div>
</body>
</html>`
)
