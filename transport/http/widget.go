package http

import (
	"html/template"
	"io"
)

// WidgetData is everything the login widget fragment needs: the current auth
// state, the processor URL the script posts back to, and an optional display
// name shown instead of the email.
type WidgetData struct {
	Authenticated bool
	Email         string
	DisplayName   string
	Processor     string
}

var widgetTmpl = template.Must(template.New("widget").Parse(widgetHTML))

// RenderWidget writes the login/logout UI fragment. The markup and script
// are the client half of the JSON action protocol: the script posts
// persona_action (plus the assertion on login) to the processor with the
// async marker header set, and reloads or alerts on the outcome.
func RenderWidget(w io.Writer, data WidgetData) error {
	return widgetTmpl.Execute(w, data)
}

const widgetHTML = `<div id="persona-widget">
{{- if .Authenticated}}
  <span class="persona-user">{{if .DisplayName}}{{.DisplayName}}{{else}}{{.Email}}{{end}}</span>
  <a href="#" id="persona-logout">Sign out</a>
{{- else}}
  <a href="#" id="persona-login">Sign in</a>
{{- end}}
</div>
<script src="https://login.persona.org/include.js"></script>
<script>
(function () {
  var processor = {{.Processor}};

  function post(fields, done) {
    var xhr = new XMLHttpRequest();
    xhr.open("POST", processor, true);
    xhr.setRequestHeader("X-Requested-With", "XMLHttpRequest");
    xhr.setRequestHeader("Content-Type", "application/x-www-form-urlencoded");
    xhr.onreadystatechange = function () {
      if (xhr.readyState === 4) {
        done(JSON.parse(xhr.responseText));
      }
    };
    var body = [];
    for (var k in fields) {
      body.push(encodeURIComponent(k) + "=" + encodeURIComponent(fields[k]));
    }
    xhr.send(body.join("&"));
  }

  navigator.id.watch({
    loggedInUser: {{if .Authenticated}}{{.Email}}{{else}}null{{end}},
    onlogin: function (assertion) {
      post({persona_action: "login", assertion: assertion}, function (res) {
        if (res.status === "ok") {
          window.location.reload();
        } else {
          navigator.id.logout();
          alert(res.reason);
        }
      });
    },
    onlogout: function () {
      post({persona_action: "logout"}, function () {
        window.location.reload();
      });
    }
  });

  var login = document.getElementById("persona-login");
  if (login) {
    login.onclick = function () { navigator.id.request(); return false; };
  }
  var logout = document.getElementById("persona-logout");
  if (logout) {
    logout.onclick = function () { navigator.id.logout(); return false; };
  }
})();
</script>
`
