package rod

// HTML fixtures served by the integration tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="testForm" onsubmit="return false">
		<input id="username" type="text" name="username" value="old" />
		<input id="password" type="password" name="password" />
		<select id="country" name="country">
			<option value="fr">France</option>
			<option value="de">Germany</option>
			<option value="jp" selected>Japan</option>
		</select>
		<button id="submit" type="submit">Submit</button>
	</form>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body style="margin: 0">
	<button id="btn" style="position: absolute; left: 10px; top: 10px; width: 100px; height: 40px">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
		document.addEventListener('keydown', function(e) {
			document.getElementById('result').textContent = (e.ctrlKey ? 'Control+' : '') + e.key;
		});
	</script>
</body>
</html>`

	FrameHTML = `<!DOCTYPE html>
<html>
<body>
	<iframe name="inner" srcdoc="<p id='inside'>Inside frame</p><iframe name='nested' srcdoc='<p id=&quot;deep&quot;>Deep</p>'></iframe>"></iframe>
</body>
</html>`
)
