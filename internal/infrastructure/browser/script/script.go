// Package script holds the page-side JavaScript shared by the browser
// engines, and the decoding of what it returns.
package script

import (
	"encoding/json"
	"fmt"

	"browser-mcp/internal/domain/entity"
)

// EvaluateWithConsole runs src with eval() while console.log/info/warn/error
// are captured. The console is restored in finally whether or not the
// script throws. The result is serialized in the page with
// JSON.stringify(v, null, 2), so "json" is absent when the value has no
// JSON form (undefined, functions, symbols).
const EvaluateWithConsole = `(src) => {
  const logs = [];
  const methods = ["log", "info", "warn", "error"];
  const original = {};
  for (const m of methods) {
    original[m] = console[m];
    console[m] = (...args) => {
      logs.push("[" + m + "] " + args.join(" "));
      original[m].apply(console, args);
    };
  }
  try {
    const result = eval(src);
    const out = { logs: logs };
    const text = JSON.stringify(result, null, 2);
    if (text !== undefined) out.json = text;
    return out;
  } catch (e) {
    const message = e && e.message !== undefined ? String(e.message) : String(e);
    return { logs: logs, error: message };
  } finally {
    for (const m of methods) console[m] = original[m];
  }
}`

// ByText returns the innermost elements whose whitespace-normalized text
// contains needle, case-insensitively, in document order. With all=false
// only the first match (or null) is returned.
const ByText = `(needle, all) => {
  const norm = (s) => (s || "").replace(/\s+/g, " ").trim().toLowerCase();
  const want = norm(needle);
  const skip = new Set(["SCRIPT", "STYLE", "NOSCRIPT", "TEMPLATE", "HEAD", "TITLE"]);
  const matches = [];
  const walk = (el) => {
    if (skip.has(el.tagName)) return false;
    let inner = false;
    for (const child of el.children) {
      if (walk(child)) inner = true;
    }
    if (inner) return true;
    if (norm(el.textContent).includes(want)) {
      matches.push(el);
      return true;
    }
    return false;
  };
  const root = document.body || document.documentElement;
  if (root) walk(root);
  return all ? matches : (matches[0] || null);
}`

// SelectOption picks the option of a <select> (bound as this) whose value
// or label equals value, then fires input and change.
const SelectOption = `function (value) {
  if (!this || this.tagName !== "SELECT") {
    throw new Error("Element is not a <select> element");
  }
  const opt = Array.from(this.options).find((o) => o.value === value || o.label === value);
  if (!opt) {
    throw new Error("No option matching \"" + value + "\"");
  }
  this.value = opt.value;
  opt.selected = true;
  this.dispatchEvent(new Event("input", { bubbles: true }));
  this.dispatchEvent(new Event("change", { bubbles: true }));
  return opt.value;
}`

type outcome struct {
	JSON  *string  `json:"json"`
	Logs  []string `json:"logs"`
	Error *string  `json:"error"`
}

// DecodeEvaluation turns the value returned by EvaluateWithConsole into an
// Evaluation, or a *entity.ScriptExecutionError when the script threw.
func DecodeEvaluation(raw []byte) (*entity.Evaluation, error) {
	var out outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode evaluation result: %w", err)
	}
	if out.Error != nil {
		return nil, &entity.ScriptExecutionError{Message: *out.Error}
	}

	ev := &entity.Evaluation{Logs: out.Logs}
	if out.JSON != nil {
		ev.Value = []byte(*out.JSON)
	}
	if ev.Logs == nil {
		ev.Logs = []string{}
	}
	return ev, nil
}
