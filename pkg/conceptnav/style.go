package conceptnav

// stylesheet is attached once per page build, not per render. Colors come from
// the site theme variables.
const stylesheet = `
.concept-nav {
  margin-top: 1rem;
}

.concept-nav-title {
  font-size: 0.75rem;
  font-weight: 600;
  text-transform: uppercase;
  letter-spacing: 0.05em;
  color: var(--gray);
  margin: 0 0 0.5rem 0;
  padding-bottom: 0.375rem;
  border-bottom: 1px solid var(--lightgray);
}

.concept-list {
  list-style: none !important;
  padding: 0 !important;
  margin: 0 !important;
  display: flex;
  flex-direction: column;
  gap: 0.25rem;
}

.concept-item {
  position: relative;
  margin: 0 !important;
  padding: 0 !important;
}

.concept-item::before {
  display: none !important;
}

.concept-link {
  display: flex;
  align-items: center;
  gap: 0.375rem;
  padding: 0.375rem 0.5rem;
  border-radius: 4px;
  text-decoration: none;
  transition: background-color 0.15s ease;
}

.concept-link:hover {
  background-color: var(--lightgray);
}

.concept-name {
  font-size: 0.8125rem;
  color: var(--dark);
  flex-grow: 1;
}

.concept-count {
  font-size: 0.6875rem;
  color: var(--gray);
  background: var(--lightgray);
  padding: 0.0625rem 0.375rem;
  border-radius: 8px;
  min-width: 1.25rem;
  text-align: center;
}

/* Dark mode */
[data-theme="dark"] .concept-link:hover {
  background-color: var(--darkgray);
}

[data-theme="dark"] .concept-count {
  background: var(--darkgray);
}
`

// Stylesheet returns the component's CSS fragment. It does not depend on any
// render call.
func Stylesheet() string {
	return stylesheet
}
