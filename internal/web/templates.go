package web

import (
    "bytes"
    "html/template"
    "strings"

    "github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

type templates struct {
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "stepLabel": domain.StepLabel,
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(baseTemplate))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Ultimate Tic-Tac-Toe</h1><form action="/game" method="post"><button>New game</button></form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div class="game" hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-target="#board" hx-swap="outerHTML"></div>
  {{template "board" .}}
</div>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

type cellView struct {
    Sub, Cell int
    Mark      string
    Class     string
}

type boardView struct {
    Overlay string
    Class   string
    Rows    [3][3]cellView
}

type boardData struct {
    ID     string
    Status string
    Error  string
    Cursor int
    Steps  []int
    Rows   [3][3]boardView
}

// newBoardData flattens the session under the cursor into what the board
// template needs: overlays for finished sub-boards, the highlighted target
// board, winning lines, the last-played cell and the history list.
func newBoardData(gs app.GameState) boardData {
    sess := gs.Session
    cur := sess.Current()
    last, hasLast := sess.LastMove()
    metaLine, metaWon := domain.MetaWinningLine(cur.Status)
    over := cur.Outcome().Finished()

    data := boardData{ID: gs.ID, Status: sess.Status(), Cursor: sess.Cursor()}
    for i := 0; i < sess.Len(); i++ {
        data.Steps = append(data.Steps, i)
    }
    for sub := 0; sub < 9; sub++ {
        classes := []string{"board"}
        if !over && cur.Constrained() && cur.Constraint == sub {
            classes = append(classes, "selected")
        }
        if metaWon && inLine(metaLine, sub) {
            classes = append(classes, "winning")
        }
        bv := boardView{Class: strings.Join(classes, " ")}
        switch st := cur.Status[sub]; st {
        case domain.WinX, domain.WinO:
            bv.Overlay = st.String()
        case domain.Draw:
            bv.Overlay = "-"
        }
        subLine, subWon := domain.WinningLine(cur.Boards[sub])
        for cell := 0; cell < 9; cell++ {
            cls := "square"
            if subWon && inLine(subLine, cell) {
                cls += " win"
            }
            if hasLast && last.Sub == sub && last.Cell == cell {
                cls += " last"
            }
            bv.Rows[cell/3][cell%3] = cellView{
                Sub:   sub,
                Cell:  cell,
                Mark:  cur.Boards[sub][cell].String(),
                Class: cls,
            }
        }
        data.Rows[sub/3][sub%3] = bv
    }
    return data
}

func inLine(line [3]int, idx int) bool {
    return line[0] == idx || line[1] == idx || line[2] == idx
}

const baseTemplate = `<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Ultimate Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>
.super-board-row,.board-row{display:flex}
.board{position:relative;margin:4px;padding:2px;border:2px solid #999}
.board.selected{border-color:#2a7}
.board.winning{background:#ffd}
.square{width:32px;height:32px;font-weight:bold}
.square.win{color:#c30}
.square.last{background:#def}
.alert{color:#c00}
.overlay{position:absolute;inset:0;background:rgba(255,255,255,.7);display:flex;align-items:center;justify-content:center;font-size:64px}
.history .current{font-weight:bold}
</style>
</head><body>{{template "content" .}}</body></html>`

const boardTemplate = `
<div id="board">
  <div class="status">{{.Status}}</div>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="super-board">
  {{range .Rows}}
  <div class="super-board-row">
    {{range .}}
    <div class="{{.Class}}">
      {{if .Overlay}}<div class="overlay"><span class="text">{{.Overlay}}</span></div>{{end}}
      {{range .Rows}}
      <div class="board-row">
        {{range .}}
        <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="b" value="{{.Sub}}">
          <input type="hidden" name="c" value="{{.Cell}}">
          <button class="{{.Class}}" type="submit">{{.Mark}}</button>
        </form>
        {{end}}
      </div>
      {{end}}
    </div>
    {{end}}
  </div>
  {{end}}
  </div>
  <ol class="history">
    {{range .Steps}}
    <li>
      <form hx-post="/game/{{$.ID}}/jump" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="step" value="{{.}}">
        <button type="submit"{{if eq . $.Cursor}} class="current"{{end}}>{{stepLabel .}}</button>
      </form>
    </li>
    {{end}}
  </ol>
</div>
`
