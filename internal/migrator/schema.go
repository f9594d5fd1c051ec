package migrator

// TargetDDL is the desired shape of the store's schema. The migrator diffs
// the live database against it and applies the difference.
//
// position is a sort key, not an array index: values need not be contiguous
// and uniqueness within a live sibling set is maintained by the store, not by
// a constraint (a uniform respace would transiently collide with a
// statement-checked unique index).
const TargetDDL = `
CREATE TABLE workspaces (
    id          CHAR(26) PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    version     BIGINT NOT NULL DEFAULT 1,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
    deleted_at  TIMESTAMPTZ,
    meta_data   JSONB,
    name        VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_workspaces_tenant ON workspaces (tenant_id) WHERE deleted_at IS NULL;

CREATE TABLE boards (
    id           CHAR(26) PRIMARY KEY,
    tenant_id    TEXT NOT NULL,
    version      BIGINT NOT NULL DEFAULT 1,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL,
    deleted_at   TIMESTAMPTZ,
    meta_data    JSONB,
    name         VARCHAR(255) NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    workspace_id CHAR(26) NOT NULL REFERENCES workspaces (id),
    template     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_boards_tenant ON boards (tenant_id) WHERE deleted_at IS NULL;
CREATE INDEX idx_boards_workspace ON boards (workspace_id) WHERE deleted_at IS NULL;

CREATE TABLE columns (
    id          CHAR(26) PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    version     BIGINT NOT NULL DEFAULT 1,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
    deleted_at  TIMESTAMPTZ,
    meta_data   JSONB,
    title       VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    board_id    CHAR(26) NOT NULL REFERENCES boards (id),
    position    BIGINT NOT NULL,
    color       TEXT NOT NULL DEFAULT '',
    is_archived BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX idx_columns_tenant ON columns (tenant_id) WHERE deleted_at IS NULL;
CREATE INDEX idx_columns_board_position ON columns (board_id, position) WHERE deleted_at IS NULL;

CREATE TABLE cards (
    id              CHAR(26) PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    version         BIGINT NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL,
    deleted_at      TIMESTAMPTZ,
    meta_data       JSONB,
    title           VARCHAR(255) NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    board_id        CHAR(26) NOT NULL REFERENCES boards (id),
    column_id       CHAR(26) NOT NULL REFERENCES columns (id),
    position        BIGINT NOT NULL,
    priority        SMALLINT NOT NULL DEFAULT 1 CHECK (priority BETWEEN 1 AND 5),
    labels          TEXT[] NOT NULL DEFAULT '{}',
    assignees       TEXT[] NOT NULL DEFAULT '{}',
    due_date        TIMESTAMPTZ,
    estimated_hours DOUBLE PRECISION,
    actual_hours    DOUBLE PRECISION
);

CREATE INDEX idx_cards_tenant ON cards (tenant_id) WHERE deleted_at IS NULL;
CREATE INDEX idx_cards_board ON cards (board_id) WHERE deleted_at IS NULL;
CREATE INDEX idx_cards_column_position ON cards (column_id, position) WHERE deleted_at IS NULL;
CREATE INDEX idx_cards_labels ON cards USING GIN (labels);
CREATE INDEX idx_cards_assignees ON cards USING GIN (assignees);
`
